package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rowdybard/banterbox/cmd/service"
)

func main() {
	root := &cobra.Command{
		Use:   "banterbox",
		Short: "banterbox",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand(), service.NewSweepCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
