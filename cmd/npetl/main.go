package main

import (
	"context"
	"npetl-backend/cmd/npetl/commands"
	"npetl-backend/lib/serviceutil"
	"npetl-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.SetupFromEnv(context.Background(), "npetl")
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
