package main

import "github.com/quizroom/quizroom-go/internal/cli"

func main() {
	cli.Execute()
}
