package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "banterbox_"

const (
	TABLE_CONTEXT_EVENT  = TableName("context_event")
	TABLE_PRIOR_RESPONSE = TableName("prior_response")
)
