// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

const helpPlayback = `
p/SPC play/pause
>     next song
<     previous song
-/=   volume down/volume up
m     mute/unmute
,/.   seek -10%/+10%
i     show/hide details
click progress bar to seek,
drag or scroll volume bar
`

const helpPagePlayer = `
/     search
ENTER play selected result
ESC   leave the search field
click outside the search
      to close the results
`

const helpPageLog = `
newest lines on top
`
