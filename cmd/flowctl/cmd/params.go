package cmd

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/util/yaml"

	commonconfig "github.com/annettefo/prefect/internal/common/config"
	"github.com/annettefo/prefect/internal/flowctl"
)

const defaultConfigPath = "./config/launcher"

// initParams fills params from the launcher configuration. Unlike the
// launcher itself, flowctl tolerates a missing default config file; override
// files named with --config must exist.
func initParams(cmd *cobra.Command, params *flowctl.Params) error {
	overrideConfigs, err := cmd.Root().PersistentFlags().GetStringSlice("config")
	if err != nil {
		return errors.Wrap(err, "error reading config flag")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(defaultConfigPath)
	if err := v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return errors.Wrap(err, "error reading launcher configuration")
		}
	}

	for _, overrideConfig := range overrideConfigs {
		v.SetConfigFile(overrideConfig)
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "error merging configuration file %s", overrideConfig)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("PREFECT")
	v.AutomaticEnv()

	return v.Unmarshal(&params.Launcher, commonconfig.CustomHooks...)
}

// contextFromFlags builds the extra runtime context from repeated
// --context NAME=value entries and an optional --context-file. Entries
// given on the command line win over entries from the file.
func contextFromFlags(cmd *cobra.Command) (map[string]string, error) {
	pairs, err := cmd.Flags().GetStringSlice("context")
	if err != nil {
		return nil, errors.Wrap(err, "error reading context flag")
	}
	filePath, err := cmd.Flags().GetString("context-file")
	if err != nil {
		return nil, errors.Wrap(err, "error reading context-file flag")
	}

	runtimeContext := map[string]string{}
	if err := bindContextFile(filePath, runtimeContext); err != nil {
		return nil, err
	}
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, errors.Errorf("invalid context entry %q, expected NAME=value", pair)
		}
		runtimeContext[parts[0]] = parts[1]
	}
	return runtimeContext, nil
}

func bindContextFile(filePath string, runtimeContext map[string]string) error {
	if filePath == "" {
		return nil
	}

	reader, err := os.Open(filePath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer reader.Close()

	fromFile := map[string]string{}
	if err := yaml.NewYAMLOrJSONDecoder(reader, 128).Decode(&fromFile); err != nil {
		return errors.Wrapf(err, "error decoding context file %s", filePath)
	}
	for name, value := range fromFile {
		runtimeContext[name] = value
	}
	return nil
}
