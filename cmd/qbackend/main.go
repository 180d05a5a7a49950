package main

import app "qbackend/internal/app"

func main() {
	app.Run()
}
