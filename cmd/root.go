/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gopolar/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gopolar",
	Short: "Semi-Lagrangian advection on polar meshes",
	Long: `
Backward semi-Lagrangian advection of guiding-centre densities on polar meshes,
including the O-point, with circular, Czarny and discrete mappings.

gopolar diocotron -I diocotron.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(viper.GetString("log-level")); err != nil {
			return err
		}
		utils.SetParallelDegree(viper.GetInt("procs"))
		if addr := viper.GetString("metrics-addr"); addr != "" {
			go serveMetrics(addr)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gopolar.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("metrics-addr", "", "address to serve prometheus metrics on, e.g. :9090")
	pf.String("profile", "", "directory to write a CPU profile into")
	pf.Int("procs", 0, "maximum number of parallel workers, 0 for all CPUs")
	for _, name := range []string{"log-level", "metrics-addr", "profile", "procs"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gopolar")
	}
	viper.SetEnvPrefix("GOPOLAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server stopped", "err", err)
	}
}

type stopper interface{ Stop() }

type noStop struct{}

func (noStop) Stop() {}

// startProfile starts a CPU profile when --profile names a directory
func startProfile() stopper {
	dir := viper.GetString("profile")
	if dir == "" {
		return noStop{}
	}
	return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook)
}
