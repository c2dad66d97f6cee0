package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ch3ngL0rd/orderbooks/domain/orderbook"
)

// WAL payload codecs. Payloads are pipe-joined fields; user ids are
// validated pipe-free before a command is accepted.

func encodePlace(user string, side orderbook.Side, price, qty int64) []byte {
	return []byte(fmt.Sprintf("%s|%d|%d|%d", user, side, price, qty))
}

func parsePlace(data []byte) (user string, side orderbook.Side, price, qty int64, err error) {
	parts := strings.Split(string(data), "|")
	if len(parts) != 4 {
		return "", 0, 0, 0, fmt.Errorf("invalid place payload: %q", data)
	}
	user = parts[0]

	rawSide, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, 0, err
	}
	side = orderbook.Side(rawSide)

	if price, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
		return "", 0, 0, 0, err
	}
	if qty, err = strconv.ParseInt(parts[3], 10, 64); err != nil {
		return "", 0, 0, 0, err
	}
	return user, side, price, qty, nil
}

func encodeTake(user string, side orderbook.Side) []byte {
	return []byte(fmt.Sprintf("%s|%d", user, side))
}

func parseTake(data []byte) (user string, side orderbook.Side, err error) {
	parts := strings.Split(string(data), "|")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid take payload: %q", data)
	}
	rawSide, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, err
	}
	return parts[0], orderbook.Side(rawSide), nil
}

func encodeCancel(orderID uint64) []byte {
	return []byte(strconv.FormatUint(orderID, 10))
}

func parseCancel(data []byte) (uint64, error) {
	return strconv.ParseUint(string(data), 10, 64)
}

func encodeCancelPrice(user string, price int64) []byte {
	return []byte(fmt.Sprintf("%s|%d", user, price))
}

func parseCancelPrice(data []byte) (user string, price int64, err error) {
	parts := strings.Split(string(data), "|")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid cancel-at-price payload: %q", data)
	}
	price, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, err
	}
	return parts[0], price, nil
}
