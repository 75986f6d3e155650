// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-arcade/composition/internal/bootstrap"
	"github.com/go-arcade/composition/internal/conf"
	"github.com/go-arcade/composition/internal/host"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-arcade/composition/pkg/version"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "extension-host",
	Short:        "extension-host composes and runs the extension's services",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bootstrap the composition container and serve until signalled",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, cleanup, err := initApp(ctx, configFile, hostServices())
		if err != nil {
			return err
		}
		return bootstrap.Run(ctx, app, cleanup)
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the exports of every assembly as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd.Context(), cmd.OutOrStdout(), configFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "", "conf file path, e.g. -c conf.d/config.toml")
	rootCmd.AddCommand(runCmd, catalogCmd, version.VersionCmd)
}

// hostServices are the services the process offers to the container as
// ambient services.
func hostServices() *host.Services {
	s := host.NewServices()
	if err := host.AddService(s, version.GetVersion()); err != nil {
		panic(err)
	}
	return s
}

func printCatalog(ctx context.Context, w io.Writer, configFile string) error {
	appConf, err := conf.LoadConfigFile(configFile)
	if err != nil {
		return err
	}
	logger, err := log.NewLog(&appConf.Log)
	if err != nil {
		return err
	}
	sugar := logger.Sugar()

	entries, err := bootstrap.DescribeCatalog(ctx, sugar, bootstrap.ProvideAssemblies(appConf, sugar)...)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
