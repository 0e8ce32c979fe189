// Copyright © 2023 One Concern

package main

import (
	"github.com/oneconcern/datasync/cmd/datasync/cmd"
)

func main() {
	cmd.Execute()
}
