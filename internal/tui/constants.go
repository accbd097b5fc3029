package tui

import "time"

const (
	defaultWidth      = 80
	maxTextareaHeight = 6
	minTextareaHeight = 1
	minWrapWidth      = 40
	noticeTimeout     = 4 * time.Second
)
