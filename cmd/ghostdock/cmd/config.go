/*
Copyright The GhostDock Authors.
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
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// defaultConfigName is the configuration file looked up in the user home
// directory when --config is not given.
const defaultConfigName = ".ghostdock.toml"

// Config is the TOML configuration file of the ghostdock command.
//
// Example:
//
//	registry = "localhost:5000"
//	plain-http = true
//	username = "admin"
type Config struct {
	Registry  string `toml:"registry"`
	PlainHTTP bool   `toml:"plain-http"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Token     string `toml:"token"`
}

// loadConfig reads the configuration file at path.
func loadConfig(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to load configuration file %q", path)
	}
	return &config, nil
}

// applyConfig loads the configuration file and fills in options that were not
// set on the command line. A missing default configuration file is not an
// error; a missing file given via --config is.
func applyConfig(cmd *cobra.Command) error {
	path := opts.Config
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, defaultConfigName)
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	config, err := loadConfig(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("registry") && config.Registry != "" {
		opts.Registry = config.Registry
	}
	if !flags.Changed("plain-http") {
		opts.PlainHTTP = config.PlainHTTP
	}
	if !flags.Changed("username") && config.Username != "" {
		opts.Username = config.Username
	}
	if !flags.Changed("password") && config.Password != "" {
		opts.Password = config.Password
	}
	if !flags.Changed("token") && config.Token != "" {
		opts.Token = config.Token
	}
	return nil
}
