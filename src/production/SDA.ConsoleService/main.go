package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootcmd = &cobra.Command{
	Use:   "sda-console",
	Short: "SDA Console is the web console of the SDA Manager",
	Long:  `SDA Console serves the /sdamanager web surface in front of an SDA Manager: devices, apps, groups and stored deployment manifests`,
}

func main() {
	rootcmd.AddCommand(servecmd)
	rootcmd.AddCommand(lscmd)

	if err := rootcmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
