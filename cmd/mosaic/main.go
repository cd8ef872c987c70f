package main

import "github.com/joho/godotenv"

func main() {
	// Best effort: secrets may come from the environment directly.
	_ = godotenv.Load()
	Execute()
}
