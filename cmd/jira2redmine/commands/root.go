package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "jira2redmine",
	Short: "Migrate Jira issues into Redmine",
	Long: `jira2redmine runs the extract/transform/push migration core that
copies Jira issues into a Redmine instance via a SQLite staging and
mapping database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMigration,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ./jira2redmine.yaml or $JIRA2REDMINE_CONFIG)")
	rootCmd.Flags().String("phases", "jira,transform,push", "comma-separated phases to run")
	rootCmd.Flags().String("skip", "", "comma-separated phases to subtract from --phases")
	rootCmd.Flags().Bool("confirm-push", false, "actually POST to Redmine during the push phase")
	rootCmd.Flags().Bool("dry-run", false, "build payloads and print them; never call any API")
	rootCmd.Flags().Bool("use-extended-api", false, "route pushes through the Redmine extended-API prefix")
	rootCmd.Flags().BoolP("version", "V", false, "print version and exit")

	viper.BindPFlag("phases", rootCmd.Flags().Lookup("phases"))
	viper.BindPFlag("skip", rootCmd.Flags().Lookup("skip"))
	viper.BindPFlag("confirm-push", rootCmd.Flags().Lookup("confirm-push"))
	viper.BindPFlag("dry-run", rootCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("use-extended-api", rootCmd.Flags().Lookup("use-extended-api"))
}

func initConfig() {
	viper.SetEnvPrefix("JIRA2REDMINE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// phaseSet implements spec §6's `--phases`/`--skip` CLI surface: the
// default set of all three phases, minus whatever --skip names.
func phaseSet(phasesCSV, skipCSV string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range strings.Split(phasesCSV, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			set[p] = true
		}
	}
	for _, p := range strings.Split(skipCSV, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			delete(set, p)
		}
	}
	return set
}

func printVersion() {
	fmt.Fprintf(os.Stdout, "jira2redmine %s\n", Version)
}
