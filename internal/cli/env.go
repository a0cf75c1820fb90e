package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var errInvalidEnv = errors.New("invalid environment variable")

// bindEnvVars sets unchanged flags of cmd from DECLUTTER_<FLAG_NAME>
// environment variables, where the flag name is upper-cased and dashes
// become underscores:
//   - Flag "log-level" is read from "DECLUTTER_LOG_LEVEL"
//   - Flag "config" is read from "DECLUTTER_CONFIG"
//
// Arguments take precedence over environment variables, which take precedence
// over default values. The variable name is added to each flag's usage.
//
// Values that a flag rejects leave the default in place and are returned as
// one joined error, to be reported once logging is set up.
func bindEnvVars(cmd *cobra.Command) error {
	var errs []error

	bind := func(flag *pflag.Flag) {
		err := bindFlagToEnv(flag)
		if err != nil {
			errs = append(errs, err)
		}
	}

	cmd.Flags().VisitAll(bind)
	cmd.PersistentFlags().VisitAll(bind)

	return errors.Join(errs...)
}

func bindFlagToEnv(flag *pflag.Flag) error {
	envName := flagToEnvName(flag.Name)

	if !strings.Contains(flag.Usage, envName) {
		flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)
	}

	if flag.Changed {
		return nil
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok {
		return nil
	}

	err := flag.Value.Set(envValue)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %w", errInvalidEnv, envName, envValue, err)
	}

	return nil
}

// flagToEnvName converts a flag name to its environment variable name.
func flagToEnvName(flagName string) string {
	return strings.ToUpper(cmdName + "_" + strings.ReplaceAll(flagName, "-", "_"))
}
