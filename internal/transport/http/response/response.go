package response

import "github.com/gin-gonic/gin"

// Client-facing error texts. The chat frontend shows them verbatim.
const (
	MsgMissingFields   = "Username und Nachricht erforderlich"
	MsgContentTooLong  = "Nachricht zu lang (max 500 Zeichen)"
	MsgUsernameTooLong = "Username zu lang (max 30 Zeichen)"
	MsgSaveFailed      = "Fehler beim Speichern der Nachricht"
	MsgDatabaseError   = "Datenbankfehler"
	MsgBodyTooLarge    = "Anfrage zu groß"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorResponse{Error: message})
}
