package services

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"go.uber.org/zap"
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type DateCount struct {
	Date   string `json:"date"`
	Clicks int    `json:"clicks"`
}

type HourCount struct {
	Hour   int `json:"hour"`
	Clicks int `json:"clicks"`
}

type DayOfWeekCount struct {
	Day    string `json:"day"`
	Clicks int    `json:"clicks"`
}

type ChannelCount struct {
	Channel string `json:"channel"`
	Clicks  int    `json:"clicks"`
}

type CampaignClicks struct {
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	Clicks       int      `json:"clicks"`
	Channels     []string `json:"channels"`
}

type PlacementClicks struct {
	PlacementSeq int    `json:"placement_id"`
	Channel      string `json:"channel"`
	AdType       string `json:"ad_type"`
	Medium       string `json:"medium"`
	Clicks       int    `json:"clicks"`
	FinalURL     string `json:"final_url,omitempty"`
	TrackedURL   string `json:"tracked_url,omitempty"`
}

type RecentClick struct {
	Timestamp  time.Time `json:"timestamp"`
	Channel    string    `json:"channel"`
	UTMContent string    `json:"utm_content"`
	IP         string    `json:"ip"`
}

type Overview struct {
	Summary struct {
		TotalClicks     int `json:"total_clicks"`
		TotalCampaigns  int `json:"total_campaigns"`
		ActiveCampaigns int `json:"active_campaigns"`
		Channels        int `json:"channels"`
	} `json:"summary"`
	ClicksByDate     []DateCount      `json:"clicks_by_date"`
	ClicksByCampaign []CampaignClicks `json:"clicks_by_campaign"`
	ClicksByChannel  []ChannelCount   `json:"clicks_by_channel"`
	ClicksByHour     []HourCount      `json:"clicks_by_hour"`
}

type CampaignAnalytics struct {
	Campaign *models.Campaign `json:"campaign"`
	Summary  struct {
		TotalClicks     int `json:"total_clicks"`
		TotalPlacements int `json:"total_placements"`
		Channels        int `json:"channels"`
	} `json:"summary"`
	ClicksByDate      []DateCount       `json:"clicks_by_date"`
	ClicksByPlacement []PlacementClicks `json:"clicks_by_placement"`
	ClicksByChannel   []ChannelCount    `json:"clicks_by_channel"`
	ClicksByHour      []HourCount       `json:"clicks_by_hour"`
	ClicksByDayOfWeek []DayOfWeekCount  `json:"clicks_by_day_of_week"`
	RecentClicks      []RecentClick     `json:"recent_clicks"`
}

type PlacementAnalytics struct {
	PlacementSeq int    `json:"placement_id"`
	CampaignID   string `json:"campaign_id"`
	Channel      string `json:"channel"`
	AdType       string `json:"ad_type"`
	Clicks       int    `json:"clicks"`
	ClickHistory []struct {
		Timestamp time.Time `json:"timestamp"`
		UserAgent string    `json:"user_agent"`
	} `json:"click_history"`
}

// AnalyticsService computes read-side rollups over the click log. It never
// writes; results may trail concurrent appends slightly but are never
// partial.
type AnalyticsService struct {
	campaignRepo  *repositories.CampaignRepo
	placementRepo *repositories.PlacementRepo
	clickRepo     *repositories.ClickRepo
	log           *zap.Logger

	// degraded is set when the boot-time mirror restore failed; with no
	// data ever loaded the read side answers 503 rather than an empty 200.
	degraded atomic.Bool
}

func NewAnalyticsService(
	campaignRepo *repositories.CampaignRepo,
	placementRepo *repositories.PlacementRepo,
	clickRepo *repositories.ClickRepo,
	log *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		campaignRepo:  campaignRepo,
		placementRepo: placementRepo,
		clickRepo:     clickRepo,
		log:           log,
	}
}

func (s *AnalyticsService) SetDegraded(v bool) {
	s.degraded.Store(v)
}

func (s *AnalyticsService) checkAvailable(ctx context.Context) error {
	if !s.degraded.Load() {
		return nil
	}
	campaigns, err := s.campaignRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(campaigns) == 0 {
		return ErrUnavailable
	}
	return nil
}

func (s *AnalyticsService) Overview(ctx context.Context) (*Overview, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}

	campaigns, err := s.campaignRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(campaigns))
	active := 0
	for _, c := range campaigns {
		names[c.CampaignID] = c.Name
		if c.Status == models.CampaignStatusActive {
			active++
		}
	}

	byCampaign, err := s.clickRepo.AllByCampaign(ctx)
	if err != nil {
		return nil, err
	}

	out := &Overview{}
	out.Summary.TotalCampaigns = len(campaigns)
	out.Summary.ActiveCampaigns = active

	byDate := map[string]int{}
	byChannel := map[string]int{}
	byHour := map[int]int{}
	channels := map[string]struct{}{}
	today := time.Now().UTC().Format("2006-01-02")
	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	for campaignID, clicks := range byCampaign {
		stat := CampaignClicks{CampaignID: campaignID, CampaignName: campaignID}
		if name, ok := names[campaignID]; ok && name != "" {
			stat.CampaignName = name
		}
		campaignChannels := map[string]struct{}{}

		for _, ev := range clicks {
			out.Summary.TotalClicks++
			stat.Clicks++
			campaignChannels[ev.Channel] = struct{}{}
			channels[ev.Channel] = struct{}{}
			byChannel[channelOrUnknown(ev.Channel)]++

			if ev.Timestamp.After(cutoff) {
				byDate[ev.Timestamp.Format("2006-01-02")]++
			}
			if ev.Timestamp.Format("2006-01-02") == today {
				byHour[ev.Timestamp.Hour()]++
			}
		}

		for ch := range campaignChannels {
			stat.Channels = append(stat.Channels, ch)
		}
		sort.Strings(stat.Channels)
		out.ClicksByCampaign = append(out.ClicksByCampaign, stat)
	}

	out.Summary.Channels = len(channels)
	out.ClicksByDate = sortedDateCounts(byDate)
	out.ClicksByChannel = sortedChannelCounts(byChannel)
	out.ClicksByHour = hourCounts(byHour)
	sort.Slice(out.ClicksByCampaign, func(i, j int) bool {
		if out.ClicksByCampaign[i].Clicks != out.ClicksByCampaign[j].Clicks {
			return out.ClicksByCampaign[i].Clicks > out.ClicksByCampaign[j].Clicks
		}
		return out.ClicksByCampaign[i].CampaignID < out.ClicksByCampaign[j].CampaignID
	})

	return out, nil
}

func (s *AnalyticsService) CampaignSummary(ctx context.Context, campaignID string) (*CampaignAnalytics, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	clicks, err := s.clickRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	placements, err := s.placementRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	out := &CampaignAnalytics{Campaign: campaign}
	out.Summary.TotalClicks = len(clicks)
	out.Summary.TotalPlacements = len(placements)

	byDate := map[string]int{}
	byChannel := map[string]int{}
	byHour := map[int]int{}
	byDay := map[int]int{}
	channels := map[string]struct{}{}

	for _, ev := range clicks {
		byDate[ev.Timestamp.Format("2006-01-02")]++
		byChannel[channelOrUnknown(ev.Channel)]++
		byHour[ev.Timestamp.Hour()]++
		byDay[int(ev.Timestamp.Weekday())]++
		channels[ev.Channel] = struct{}{}
	}
	out.Summary.Channels = len(channels)

	for _, p := range placements {
		out.ClicksByPlacement = append(out.ClicksByPlacement, PlacementClicks{
			PlacementSeq: p.SequenceNum,
			Channel:      p.Channel,
			AdType:       p.AdType,
			Medium:       p.Medium,
			Clicks:       s.clickRepo.CountByPlacement(ctx, p.ID),
			FinalURL:     p.FinalURL,
			TrackedURL:   p.TrackedURL,
		})
	}

	out.ClicksByDate = sortedDateCounts(byDate)
	out.ClicksByChannel = sortedChannelCounts(byChannel)
	out.ClicksByHour = hourCounts(byHour)
	for day := 0; day < 7; day++ {
		out.ClicksByDayOfWeek = append(out.ClicksByDayOfWeek, DayOfWeekCount{Day: dayNames[day], Clicks: byDay[day]})
	}

	recent := clicks
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	for i := len(recent) - 1; i >= 0; i-- {
		out.RecentClicks = append(out.RecentClicks, RecentClick{
			Timestamp:  recent[i].Timestamp,
			Channel:    recent[i].Channel,
			UTMContent: recent[i].UTM.Content,
			IP:         recent[i].IP,
		})
	}

	return out, nil
}

func (s *AnalyticsService) PlacementSummary(ctx context.Context, placementID int64) (*PlacementAnalytics, error) {
	p, err := s.placementRepo.GetByID(ctx, placementID)
	if err != nil {
		return nil, err
	}

	clicks, err := s.clickRepo.ListByPlacement(ctx, placementID)
	if err != nil {
		return nil, err
	}

	out := &PlacementAnalytics{
		PlacementSeq: p.SequenceNum,
		CampaignID:   p.CampaignID,
		Channel:      p.Channel,
		AdType:       p.AdType,
		Clicks:       len(clicks),
	}
	for _, ev := range clicks {
		out.ClickHistory = append(out.ClickHistory, struct {
			Timestamp time.Time `json:"timestamp"`
			UserAgent string    `json:"user_agent"`
		}{ev.Timestamp, ev.UserAgent})
	}
	return out, nil
}

func channelOrUnknown(ch string) string {
	if ch == "" {
		return "unknown"
	}
	return ch
}

func sortedDateCounts(byDate map[string]int) []DateCount {
	out := make([]DateCount, 0, len(byDate))
	for date, n := range byDate {
		out = append(out, DateCount{Date: date, Clicks: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func sortedChannelCounts(byChannel map[string]int) []ChannelCount {
	out := make([]ChannelCount, 0, len(byChannel))
	for ch, n := range byChannel {
		out = append(out, ChannelCount{Channel: ch, Clicks: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

func hourCounts(byHour map[int]int) []HourCount {
	out := make([]HourCount, 0, 24)
	for hour := 0; hour < 24; hour++ {
		out = append(out, HourCount{Hour: hour, Clicks: byHour[hour]})
	}
	return out
}
