package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agorabot/agora/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agora status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s agora Status\n\n", logo)

	cfgMark := "✗"
	if _, err := os.Stat(cfgPath); err == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:  %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}
	fmt.Printf("Gateway: port %d\n\n", cfg.Gateway.Port)

	fmt.Println("Providers:")
	for _, key := range sortedKeys(cfg.Providers) {
		p := cfg.Providers[key]
		mark := "(no key)"
		if p.APIKey != "" {
			mark = "✓"
		}
		fmt.Printf("  %-14s %-8s %s\n", key, mark, strings.Join(p.Models, ", "))
	}

	fmt.Println("\nRosters:")
	for _, key := range sortedKeys(cfg.Rosters) {
		r := cfg.Rosters[key]
		names := make([]string, 0, len(r.Agents))
		for _, a := range r.Agents {
			names = append(names, a.Name)
		}
		fmt.Printf("  %-14s %s\n", key, strings.Join(names, ", "))
	}

	fmt.Println("\nChannels:")
	fmt.Printf("  %-14s %s\n", "slack", yesNo(cfg.Channels.Slack.Enabled))
	fmt.Printf("  %-14s %s\n", "telegram", yesNo(cfg.Channels.Telegram.Enabled))
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func yesNo(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
