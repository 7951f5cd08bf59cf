package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker <convert|prune-views> [args]")
	}

	var err error
	switch os.Args[1] {
	case "convert":
		err = RunConvert(os.Args[2:])
	case "prune-views":
		err = RunPruneViews()
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}
