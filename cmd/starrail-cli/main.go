package main

import (
	"context"

	"starrail-backend/cmd/starrail-cli/commands"
	"starrail-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "starrail-cli")
	telemetry.InitSlog(false)
	commands.ExecuteContext(context.Background())
}
