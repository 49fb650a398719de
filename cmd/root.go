package cmd

import (
	"github.com/joho/godotenv"
	"github.com/jsphweid/midiscribe/constants"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "midiscribe",
	Short: "Transcribes MIDI performances into notation",
	Long: `midiscribe turns a recorded MIDI performance into a score skeleton:
quantized notes split into voices and staves, with tuplets, swing, pickup
measures and clefs worked out.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env is fine, the environment may already be set
		_ = godotenv.Load()
		logrus.SetLevel(constants.GetLogLevel())
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
