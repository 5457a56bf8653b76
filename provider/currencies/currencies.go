package currencies

import "github.com/sig-0/tcventanilla/storage/types"

var (
	USD types.Currency = "USD"
	EUR types.Currency = "EUR"
	CRC types.Currency = "CRC"
)
