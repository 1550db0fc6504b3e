package cli

import (
	"github.com/spf13/cobra"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List configured commerce instances",
	Args:  cobra.NoArgs,
	RunE:  runInstances,
}

func init() {
	rootCmd.AddCommand(instancesCmd)
}

func runInstances(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}

	instances := r.Instances.Instances()
	if len(instances) == 0 {
		cmd.Println("No instances configured")
		return nil
	}

	agentID := r.Instances.InstanceIDFromAgent(r.Agent())
	cmd.Println("Instances:")
	for _, inst := range instances {
		marker := " "
		if inst.ID == agentID {
			marker = "*"
		}
		cmd.Printf("%s %s\n", marker, inst.ID)
		cmd.Printf("    URL: %s\n", inst.BaseURL())
		if inst.Preview.DefaultSite != "" {
			cmd.Printf("    Site: %s\n", inst.Preview.DefaultSite)
		}
		if inst.KeystoreType != "" {
			cmd.Printf("    Keystore: %s\n", inst.KeystoreType)
		}
		if inst.RequestsPerSecond > 0 {
			cmd.Printf("    Rate: %g/s\n", inst.RequestsPerSecond)
		}
	}
	cmd.Printf("\nTotal: %d instances\n", len(instances))
	return nil
}
