package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown             = "UNKNOWN"
	CodeNetwork             = "NETWORK_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeGameCompleted       = "GAME_COMPLETED"
	CodeAlreadySubmitting   = "ALREADY_SUBMITTING"
	CodeOccupied            = "OCCUPIED"
	CodeOutOfBounds         = "OUT_OF_BOUNDS"
	CodeResourceUnavailable = "RESOURCE_UNAVAILABLE"
	CodeInvalidMove         = "INVALID_MOVE"
)

var localeMessages = map[string]map[Code]string{
	"en-US": {
		CodeUnknown:             "Something went wrong. Reload the game to continue.",
		CodeNetwork:             "Could not reach the game server. It will retry on the next refresh.",
		CodeNotFound:            "This game no longer exists.",
		CodeUnauthorized:        "Your session expired. Sign in again.",
		CodeNotYourTurn:         "It is not your turn anymore.",
		CodeGameCompleted:       "This game is over.",
		CodeAlreadySubmitting:   "Your move is already being submitted.",
		CodeOccupied:            "That square is already taken.",
		CodeOutOfBounds:         "That does not fit on the board.",
		CodeResourceUnavailable: "That piece is already in use.",
		CodeInvalidMove:         "Move rejected{{if .Reason}}: {{.Reason}}{{end}}.",
	},
	"pt-BR": {
		CodeUnknown:             "Algo deu errado. Recarregue o jogo para continuar.",
		CodeNetwork:             "Não foi possível contatar o servidor. Tentaremos novamente na próxima atualização.",
		CodeNotFound:            "Este jogo não existe mais.",
		CodeUnauthorized:        "Sua sessão expirou. Entre novamente.",
		CodeNotYourTurn:         "Não é mais a sua vez.",
		CodeGameCompleted:       "Este jogo terminou.",
		CodeAlreadySubmitting:   "Sua jogada já está sendo enviada.",
		CodeOccupied:            "Essa casa já está ocupada.",
		CodeOutOfBounds:         "Isso não cabe no tabuleiro.",
		CodeResourceUnavailable: "Essa peça já está em uso.",
		CodeInvalidMove:         "Jogada rejeitada{{if .Reason}}: {{.Reason}}{{end}}.",
	},
}
