package contracts

import "embed"

//go:generate go run github.com/pongarena/contractgen/cmd/contractgen --source PongTournamentScores.sol --output ../internal/contractconfig/contract_config.go --build-dir ../build
//go:embed PongTournamentScores.sol
var Fs embed.FS
