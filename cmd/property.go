package cmd

import (
	"lotus/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// set-property flips the pause and deprecation flags read by the pool
var setPropertyCmd = &cobra.Command{
	Use:     "set-property <key> <value>",
	Aliases: []string{"sp"},
	Short:   "set a system property",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		key := args[0]
		switch key {
		case core.SysPropertyPaused, core.SysPropertyDeprecated:
		default:
			cmd.PrintErrln("unknown property key:", key)
			return
		}

		database := provideDatabase()
		defer database.Close()

		propertyStore := providePropertyStore(database)
		if err := propertyStore.Save(ctx, key, cast.ToBool(args[1])); err != nil {
			panic(err)
		}

		cmd.Println(key, "=", cast.ToBool(args[1]))
	},
}

func init() {
	rootCmd.AddCommand(setPropertyCmd)
}
