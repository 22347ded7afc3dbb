package redis

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/mcoot/matchboard/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func encodePlayer(p *model.Player) ([]byte, error) {
	return json.Marshal(p)
}

func decodePlayer(data []byte) (*model.Player, error) {
	var p model.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
	}
	return &p, nil
}
