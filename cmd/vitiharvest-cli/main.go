package main

import (
	"vitiharvest-backend/cmd/vitiharvest-cli/commands"
	"vitiharvest-backend/lib/serviceutil"
	"vitiharvest-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "vitiharvest-cli")
	if err != nil {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	defer tel.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
