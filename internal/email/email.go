package email

import (
	"context"
	"fmt"

	"github.com/smirnov-d/railbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify booking %s: %s for train %s (%s -> %s)\n",
		event.BookingID, event.Type, event.TrainID, event.Origin, event.Destination)
	return nil
}
