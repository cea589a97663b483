package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/oullin/profilesync/metal/cli/panel"
	"github.com/oullin/profilesync/metal/kernel"
	"github.com/oullin/profilesync/pkg/cli"
	"github.com/oullin/profilesync/pkg/portal"
)

var app *kernel.App

func init() {
	validate := portal.GetDefaultValidator()

	secrets, err := kernel.Ignite("./.env", validate)
	if err != nil {
		panic(err.Error())
	}

	if app, err = kernel.MakeApp(secrets, validate, kernel.AppOptions{}); err != nil {
		panic(err.Error())
	}
}

func main() {
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.ClearScreen()

	menu := panel.MakeMenu()
	actions := MakeActions(app, &menu)

	for {
		err := menu.CaptureInput()

		if err != nil {
			cli.Errorln(err.Error())
			continue
		}

		choice := menu.GetChoice()
		if choice == 0 {
			cli.Successln("Goodbye!")
			return
		}

		if err = actions.Run(ctx, choice); err != nil {
			cli.Errorln(err.Error())
		}

		cli.Blueln("Press Enter to continue...")

		menu.PrintLine()
		menu.Print()
	}
}
