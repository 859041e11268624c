package main

import (
	"context"
	"fmt"
	"os"

	"meteoapi/internal/app"
	"meteoapi/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type appContextKey struct{}

// opened 是本次命令打开的应用，命令失败时同样需要关闭
var opened *app.App

var rootCmd = &cobra.Command{
	Use:   "meteoctl",
	Short: "meteoctl - weather station API administration",
	Long: `meteoctl manages users, stations and parameter discovery of a meteoapi
deployment. It reads the same environment configuration as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ParseConfig()
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		application, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		opened = application
		cmd.SetContext(context.WithValue(cmd.Context(), appContextKey{}, application))
		return nil
	},
}

func appFrom(cmd *cobra.Command) *app.App {
	application, _ := cmd.Context().Value(appContextKey{}).(*app.App)
	return application
}

// execute runs one command line and always releases the application, since
// cobra skips post-run hooks when a command fails.
func execute(ctx context.Context, args []string) error {
	defer closeApp()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func closeApp() {
	if opened != nil {
		opened.Close()
		opened = nil
	}
}

func main() {
	logrus.SetLevel(logrus.WarnLevel)

	if err := execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
