package main

import (
	"log"
	"os"

	socialgram "Socialgram"
)

func main() {
	if err := socialgram.Run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
