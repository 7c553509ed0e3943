package cmd

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Cellebyte/mpsync/cmd/util"
	"github.com/Cellebyte/mpsync/pkg/errors"
	"github.com/Cellebyte/mpsync/pkg/sync"
	"github.com/Cellebyte/mpsync/pkg/version"
)

// Execute runs the main CLI process.
func Execute() {
	if err := New().Execute(); err != nil {
		util.HandleFatalError(err)
	}
}

// New creates the root `mpsync` command.
func New() *cobra.Command {
	var (
		folder  string
		port    string
		verbose bool
		reset   bool
		caching bool
	)

	cmd := &cobra.Command{
		Use:   "mpsync",
		Short: "Synchronize a folder to a MicroPython board.",
		Long: "Mirror a local folder onto a MicroPython board over its\n" +
			"serial port: folders are created and files are uploaded,\n" +
			"nothing on the board is ever deleted.",
		Version:      version.Version,
		SilenceUsage: true,

		// The call to Execute prints the error, so we silence errors here to
		// avoid double printing.
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			return run(folder, port, reset, caching)
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "",
		"The folder that should be synchronized. "+
			"Default is the current working directory.")
	cmd.Flags().StringVarP(&port, "port", "p", sync.DefaultPort,
		"Serial port of the MicroPython board.")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Print debug information, including the code executed on the board.")
	cmd.Flags().BoolVar(&reset, "reset", false,
		"Soft reboot the board before syncing.")
	cmd.Flags().BoolVar(&caching, "caching", false,
		"Skip uploads whose contents haven't changed since the last upload.")
	return cmd
}

func run(folder, port string, reset, caching bool) error {
	folder, err := resolveFolder(folder)
	if err != nil {
		return errors.WithContext(err, "resolve folder")
	}

	config := sync.Config{
		Folder:  folder,
		Port:    port,
		Reset:   reset,
		Caching: caching,
	}

	log.Infof("Start syncing folder %q to board at %q", folder, port)
	return friendlyPortError(sync.WithSession(config, func(session *sync.Session) error {
		return session.Sync("")
	}))
}

// friendlyPortError rewrites a missing serial device into a friendlier
// message, since an unplugged board is by far the most common failure.
func friendlyPortError(err error) error {
	if err == nil {
		return nil
	}
	if dneErr, ok := errors.RootCause(err).(errors.FileNotFound); ok {
		return errors.NewFriendlyError(
			"Port %q does not exist!\nIs the board plugged in?", dneErr.Path)
	}
	return err
}

// resolveFolder normalizes the --folder flag into an absolute path,
// defaulting to the current working directory and expanding a leading `~`.
func resolveFolder(folder string) (string, error) {
	if folder == "" {
		return os.Getwd()
	}

	expanded, err := homedir.Expand(folder)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
