// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import "time"

const droppedLogCheck = 10 * time.Second

func (ui *Ui) runEventLoops() {
	go ui.guiEventLoop()
}

// handle ui updates
func (ui *Ui) guiEventLoop() {
	dropTimer := time.NewTicker(droppedLogCheck)
	defer dropTimer.Stop()
	var reportedDrops uint64

	for {
		select {
		case <-dropTimer.C:
			if dropped := ui.logger.Dropped(); dropped > reportedDrops {
				ui.logPage.Print("logger: dropped lines while the log page was busy")
				reportedDrops = dropped
			}

		case msg := <-ui.logger.Prints:
			// handle log page output
			ui.logPage.Print(msg)
		}
	}
}
