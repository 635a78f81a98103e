package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "camera-sync",
	Short:   "Camera upload and SD card transfer daemon",
	Version: Version,
	Long: `camera-sync scans local camera folders, queues new photos and videos
for upload to the cloud drive without duplicating what is already there,
and moves finished SD card downloads into place.

Configuration is read from the environment (or a .env file). Camera upload
preferences live in settings.yaml under CAMERA_SYNC_HOME.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
