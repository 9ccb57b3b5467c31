package audit

import (
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/pkg/log"
)

// Recorder writes one structured audit line per realtime lifecycle event.
// These lines are tagged so log pipelines can split them from the
// application stream.
type Recorder struct {
	logger zerolog.Logger
}

// NewRecorder creates an audit recorder on top of the global logger.
func NewRecorder() *Recorder {
	return &Recorder{
		logger: log.L().With().
			Str(log.FieldLogType, log.LogTypeAudit).
			Logger(),
	}
}

// Connected records a successful websocket connect.
func (r *Recorder) Connected(session *domain.Session) {
	r.logger.Info().
		Str(log.FieldClientID, session.ID).
		Str(log.FieldUserID, session.UserID).
		Str(log.FieldUsername, session.Username).
		Str(log.FieldRoomKey, session.Room()).
		Msg("connection established")
}

// Disconnected records a websocket disconnect.
func (r *Recorder) Disconnected(session *domain.Session) {
	r.logger.Info().
		Str(log.FieldClientID, session.ID).
		Str(log.FieldUserID, session.UserID).
		Str(log.FieldRoomKey, session.Room()).
		Msg("connection closed")
}

// JoinDenied records a room admission rejection.
func (r *Recorder) JoinDenied(userID, projectID string) {
	r.logger.Warn().
		Str(log.FieldUserID, userID).
		Str(log.FieldProjectID, projectID).
		Msg("room admission denied")
}
