/*
main.go

Copyright © 2026 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of zupdate.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"github.com/CodeMonkeyCybersecurity/zupdate/cmd"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/telemetry"
)

func main() {
	logger.InitializeWithFallback()
	if log := logger.L(); log == nil {
		panic("❌ logger.L() returned nil — logger not initialized")
	}

	if err := telemetry.Init("zupdate"); err != nil {
		logger.L().Warn("Telemetry init failed, continuing without tracing")
	}

	cmd.Execute()
}
