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

// Package cmd implements the ghostdock command line client.
package cmd

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ghostdock/ghostdock-go/mgmt"
	"github.com/ghostdock/ghostdock-go/registry/remote"
	"github.com/ghostdock/ghostdock-go/registry/remote/auth"
	"github.com/ghostdock/ghostdock-go/registry/remote/retry"
)

// opts holds the resolved client options for the current invocation.
// Command line flags take precedence over the configuration file.
var opts struct {
	Registry  string
	PlainHTTP bool
	Username  string
	Password  string
	Token     string
	Config    string
	Debug     bool
}

var rootCmd = &cobra.Command{
	Use:           "ghostdock",
	Short:         "Command line client for GhostDock registries",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if opts.Debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return applyConfig(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.Registry, "registry", "r", "", "registry host, e.g. localhost:5000")
	pf.BoolVar(&opts.PlainHTTP, "plain-http", false, "access the registry via HTTP instead of HTTPS")
	pf.StringVarP(&opts.Username, "username", "u", "", "registry username")
	pf.StringVarP(&opts.Password, "password", "p", "", "registry password")
	pf.StringVar(&opts.Token, "token", "", "bearer token, e.g. a personal access token")
	pf.StringVarP(&opts.Config, "config", "c", "", "path to the configuration file")
	pf.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// registryHost returns the configured registry host.
func registryHost() (string, error) {
	if opts.Registry == "" {
		return "", pkgerrors.New("no registry specified, use --registry or the configuration file")
	}
	return opts.Registry, nil
}

// credential builds the credential from the resolved options.
func credential() auth.Credential {
	return auth.Credential{
		Username:    opts.Username,
		Password:    opts.Password,
		AccessToken: opts.Token,
	}
}

// newAuthClient builds an auth-decorated client for the given registry host.
func newAuthClient(registry string) *auth.Client {
	client := &auth.Client{
		Client:    retry.DefaultClient,
		Cache:     auth.NewCache(),
		PlainHTTP: opts.PlainHTTP,
	}
	client.SetUserAgent("ghostdock-cli")
	if cred := credential(); cred != auth.EmptyCredential {
		client.CredentialFunc = auth.StaticCredentialFunc(registry, cred)
	}
	return client
}

// newRegistryClient builds a client to the distribution API of the configured
// registry.
func newRegistryClient() (*remote.Registry, error) {
	host, err := registryHost()
	if err != nil {
		return nil, err
	}
	reg, err := remote.NewRegistry(host)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid registry %q", host)
	}
	reg.PlainHTTP = opts.PlainHTTP
	reg.Client = newAuthClient(host)
	return reg, nil
}

// newRepositoryClient builds a client to the given repository of the
// configured registry.
func newRepositoryClient(name string) (*remote.Repository, error) {
	host, err := registryHost()
	if err != nil {
		return nil, err
	}
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", host, name))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid repository %q", name)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = newAuthClient(host)
	return repo, nil
}

// newManagementClient builds a client to the management API of the configured
// registry.
func newManagementClient() (*mgmt.ManagementClient, error) {
	host, err := registryHost()
	if err != nil {
		return nil, err
	}
	client := mgmt.NewManagementClient(host)
	client.PlainHTTP = opts.PlainHTTP
	client.Client = newAuthClient(host)
	return client, nil
}
