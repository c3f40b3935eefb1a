package parser

// WeeklyMeetingLayout locates the 주간회의 board. Rows are zero-based sheet
// rows, inclusive. The name of each category is in column 0.
type WeeklyMeetingLayout struct {
	AreaRows    [2]int
	ChannelRows [2]int

	YearlyTarget          int
	YearlyActual          int
	YearlyLastYear        int
	YearlyGrowthRate      int
	YearlyAchievementRate int
	YearlyExistingGrowth  int

	MonthlyTarget          int
	MonthlyActual          int
	MonthlyLastYear        int
	MonthlyGrowthRate      int
	MonthlyAchievementRate int
	MonthlyExistingGrowth  int
	MonthlyPureGrowth      int

	WeeklyActual     int
	WeeklyLastYear   int
	WeeklyGrowthRate int
}

// DefaultWeeklyMeetingLayout matches the board used in the weekly review
var DefaultWeeklyMeetingLayout = WeeklyMeetingLayout{
	AreaRows:    [2]int{3, 7},
	ChannelRows: [2]int{12, 20},

	YearlyTarget:          1,
	YearlyActual:          2,
	YearlyLastYear:        3,
	YearlyGrowthRate:      4,
	YearlyAchievementRate: 5,
	YearlyExistingGrowth:  6,

	MonthlyTarget:          8,
	MonthlyActual:          9,
	MonthlyLastYear:        10,
	MonthlyGrowthRate:      11,
	MonthlyAchievementRate: 12,
	MonthlyExistingGrowth:  13,
	MonthlyPureGrowth:      14,

	WeeklyActual:     17,
	WeeklyLastYear:   18,
	WeeklyGrowthRate: 19,
}

// MeetingFigures holds one period's figures. Nil means the cell was empty or
// not a number.
type MeetingFigures struct {
	Target          *float64 `json:"target,omitempty"`
	Actual          *float64 `json:"actual,omitempty"`
	LastYear        *float64 `json:"lastYear,omitempty"`
	GrowthRate      *float64 `json:"growthRate,omitempty"`
	AchievementRate *float64 `json:"achievementRate,omitempty"`
	ExistingGrowth  *float64 `json:"existingGrowth,omitempty"`
	PureGrowth      *float64 `json:"pureGrowth,omitempty"`
}

// MeetingCategory is one row of the board
type MeetingCategory struct {
	Name    string         `json:"name"`
	Yearly  MeetingFigures `json:"yearly"`
	Monthly MeetingFigures `json:"monthly"`
	Weekly  MeetingFigures `json:"weekly"`
}

// WeeklyMeeting is the parsed board
type WeeklyMeeting struct {
	Areas    []MeetingCategory `json:"areas"`
	Channels []MeetingCategory `json:"channels"`
}

// ParseWeeklyMeeting reads the area and channel blocks of the board. A row is
// a category only when column 0 holds text.
func (p *Parser) ParseWeeklyMeeting(rows []Row, layout WeeklyMeetingLayout) (*WeeklyMeeting, *ParseResult) {
	result := &ParseResult{Errors: make([]ParseError, 0)}

	block := func(span [2]int) []MeetingCategory {
		out := make([]MeetingCategory, 0, span[1]-span[0]+1)
		for i := span[0]; i <= span[1] && i < len(rows); i++ {
			row := rows[i]
			result.TotalRows++

			name := row.At(0)
			if name.IsNumber || name.String() == "" {
				result.SkippedRows++
				continue
			}

			opt := func(col int) *float64 { return p.optionalNumber(row.At(col)) }
			out = append(out, MeetingCategory{
				Name: name.String(),
				Yearly: MeetingFigures{
					Target:          opt(layout.YearlyTarget),
					Actual:          opt(layout.YearlyActual),
					LastYear:        opt(layout.YearlyLastYear),
					GrowthRate:      opt(layout.YearlyGrowthRate),
					AchievementRate: opt(layout.YearlyAchievementRate),
					ExistingGrowth:  opt(layout.YearlyExistingGrowth),
				},
				Monthly: MeetingFigures{
					Target:          opt(layout.MonthlyTarget),
					Actual:          opt(layout.MonthlyActual),
					LastYear:        opt(layout.MonthlyLastYear),
					GrowthRate:      opt(layout.MonthlyGrowthRate),
					AchievementRate: opt(layout.MonthlyAchievementRate),
					ExistingGrowth:  opt(layout.MonthlyExistingGrowth),
					PureGrowth:      opt(layout.MonthlyPureGrowth),
				},
				Weekly: MeetingFigures{
					Actual:     opt(layout.WeeklyActual),
					LastYear:   opt(layout.WeeklyLastYear),
					GrowthRate: opt(layout.WeeklyGrowthRate),
				},
			})
			result.ParsedRows++
		}
		return out
	}

	return &WeeklyMeeting{
		Areas:    block(layout.AreaRows),
		Channels: block(layout.ChannelRows),
	}, result
}
