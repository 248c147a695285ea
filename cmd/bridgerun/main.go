package main

import (
	"github.com/CompassSecurity/bridgerun/internal/cmd"
	"github.com/CompassSecurity/bridgerun/internal/cmd/common"
)

func main() {
	common.Run(cmd.NewRootCmd())
}
