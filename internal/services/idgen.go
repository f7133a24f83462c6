package services

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

const (
	bookingIDPrefix    = "BK"
	bookingSuffixLen   = 5
	bookingIDAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxBookingIDTrials = 3
)

// BookingIDGenerator mints ids of the form BK<unix millis><5 base36 chars>.
type BookingIDGenerator struct {
	Now func() time.Time
}

func (g BookingIDGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g BookingIDGenerator) Next() string {
	millis := g.now().UnixMilli()
	buf := make([]byte, 0, len(bookingIDPrefix)+13+bookingSuffixLen)
	buf = append(buf, bookingIDPrefix...)
	buf = strconv.AppendInt(buf, millis, 10)
	base := big.NewInt(int64(len(bookingIDAlphabet)))
	for i := 0; i < bookingSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			n = big.NewInt(time.Now().UnixNano() % int64(len(bookingIDAlphabet)))
		}
		buf = append(buf, bookingIDAlphabet[n.Int64()])
	}
	return string(buf)
}
