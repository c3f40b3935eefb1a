package dashboard

import (
	"context"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/cache"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/sheet"
)

// WeeklyMeeting is the weekly meeting board with its source marker
type WeeklyMeeting struct {
	Areas    []parser.MeetingCategory `json:"areas"`
	Channels []parser.MeetingCategory `json:"channels"`
	Source
}

// GetWeeklyMeeting reads the weekly meeting board from the backdata workbook
func (s *Service) GetWeeklyMeeting(ctx context.Context) (*WeeklyMeeting, error) {
	key := cache.Key{Dataset: s.files.BackData, View: "weekly-meeting"}
	out, err := cached(ctx, s, "GetWeeklyMeeting", key, func(ctx context.Context) (*WeeklyMeeting, error) {
		wb, err := s.open(ctx, s.files.BackData)
		if err != nil {
			return nil, err
		}
		defer wb.Close()

		rows, name, err := s.rows(wb, sheet.WeeklyMeeting)
		if err != nil {
			return nil, err
		}
		board, result := s.parser.ParseWeeklyMeeting(rows, parser.DefaultWeeklyMeetingLayout)
		s.logParse(wb.Name, name, result)

		return &WeeklyMeeting{
			Areas:    nonNil(board.Areas),
			Channels: nonNil(board.Channels),
		}, nil
	})
	if err != nil {
		if src, ok := s.fallback(err); ok {
			return &WeeklyMeeting{
				Areas:    []parser.MeetingCategory{},
				Channels: []parser.MeetingCategory{},
				Source:   src,
			}, nil
		}
		return nil, err
	}
	return out, nil
}
