package dynamo

// DynamoDB attribute names used in key, filter and update expressions across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldGameID           = "game_id"
	fieldPlayerID         = "player_id"
	fieldResult           = "result"
	fieldHistory          = "history"
	fieldLastMoveAt       = "last_move_at"
	fieldNotifiedAt       = "auto_resign_notified_at"
	fieldResolvedAt       = "resolved_at"
	fieldResolutionReason = "resolution_reason"
	fieldScore            = "score"
)

// nullType is the attribute_type() operand for attributes explicitly set to NULL.
// A cleared timestamp may be stored either as a missing attribute or as NULL.
const nullType = "NULL"
