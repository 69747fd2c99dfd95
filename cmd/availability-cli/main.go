package main

import (
	"cursedcompass-backend/cmd/availability-cli/commands"
	"cursedcompass-backend/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
