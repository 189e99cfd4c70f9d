package db

import _ "embed"

//go:embed schema.sql
var Schema string

const (
	NEWS_EVENT  = "event"
	NEWS_NOTICE = "notice"
	NEWS_INFO   = "info"
)
