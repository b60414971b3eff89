package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and optional stores",
	Long: `Loads the configuration and checks every optional dependency:
Postgres (DATABASE_URL), Redis (REDIS_ENABLED) and the analysis YAML.

Example:
  go run ./cmd/alphalens doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return err
	}
	defer d.close()

	PrintSection("alphalens doctor")
	fmt.Printf("✅ Config loaded (ENV: %s, PRICE_SOURCE: %s)\n", d.cfg.Env, d.cfg.MarketData.Source)
	fmt.Printf("✅ Analysis config %q (news source: %s)\n", d.analysisCfg.Meta.Name, d.analysisCfg.Sentiment.Source)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Database
	if d.db == nil {
		fmt.Println("➖ Database: not configured")
	} else {
		fmt.Printf("   Database URL: %s\n", maskURL(d.cfg.Database.URL))
		status, err := d.db.HealthCheck(ctx)
		if err != nil {
			fmt.Printf("❌ Database: %v\n", err)
			return err
		}
		fmt.Printf("✅ Database: healthy in %v (conns total %d, idle %d, acquired %d)\n",
			status.ResponseTime, status.TotalConns, status.IdleConns, status.AcquiredConns)
	}

	// Redis
	if !d.redis.Enabled() {
		fmt.Println("➖ Redis: disabled")
	} else {
		if err := d.redis.Redis().Ping(ctx).Err(); err != nil {
			fmt.Printf("❌ Redis: %v\n", err)
			return err
		}
		fmt.Printf("✅ Redis: %s:%s (prefix %q)\n", d.cfg.Redis.Host, d.cfg.Redis.Port, d.cfg.Redis.Prefix)
	}

	fmt.Printf("✅ Price cache TTL: %s\n", d.cfg.MarketData.CacheTTL)
	fmt.Println("\n✅ All checks passed!")
	return nil
}

// maskURL hides the password of a connection URL
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
