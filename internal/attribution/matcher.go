// Package attribution resolves inbound tracking events that did not arrive
// through a redirect code to the placement/campaign that caused them.
package attribution

import (
	"context"
	"net/url"
	"strings"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"go.uber.org/zap"
)

// PlacementSource is the read side the matcher scans. Satisfied by
// repositories.PlacementRepo.
type PlacementSource interface {
	All(ctx context.Context) ([]models.Placement, error)
}

// Input is what an inbound beacon/page-view event carries.
type Input struct {
	UTM      models.UTMSet
	QRID     string
	PageURL  string
	Referrer string
}

// Result is always produced; classification degrades to the direct/unknown
// categories rather than erroring, because every event must still be counted.
type Result struct {
	CampaignID  string
	PlacementID int64
	Channel     string
	Medium      string
	UTM         models.UTMSet
	Matched     bool
}

// Heuristic campaign buckets used when no placement matches.
const (
	BucketOrganicSearch = "organic-search"
	BucketSocialOrganic = "social-organic"
	BucketInternal      = "internal"
	BucketReferral      = "referral"
	BucketDirect        = "direct-traffic"
	BucketUnknown       = "unknown"
)

type classification struct {
	campaignID string
	channel    string
	medium     string
}

// referrerRules is the ordered fallback table: the first matching predicate
// wins. New traffic sources are added here, not as new branches.
var referrerRules = []struct {
	name  string
	match func(host, pageHost string) bool
	class classification
}{
	{
		name:  "search engine",
		match: func(host, _ string) bool { return hostContainsAny(host, searchEngineDomains) },
		class: classification{BucketOrganicSearch, "search_engine", "organic"},
	},
	{
		name:  "social network",
		match: func(host, _ string) bool { return hostContainsAny(host, socialDomains) },
		class: classification{BucketSocialOrganic, "social", "organic"},
	},
	{
		name:  "internal",
		match: func(host, pageHost string) bool { return pageHost != "" && strings.Contains(host, pageHost) },
		class: classification{BucketInternal, "internal", "referral"},
	},
	{
		name:  "referral",
		match: func(host, _ string) bool { return host != "" },
		class: classification{BucketReferral, "referral", "referral"},
	},
}

var (
	searchEngineDomains = []string{"google", "bing", "yahoo", "duckduckgo"}
	socialDomains       = []string{"facebook", "instagram", "linkedin", "twitter", "t.co"}

	directClass = classification{BucketDirect, "direct", "none"}
)

type Matcher struct {
	placements PlacementSource
	log        *zap.Logger
}

func NewMatcher(placements PlacementSource, log *zap.Logger) *Matcher {
	return &Matcher{placements: placements, log: log}
}

// Resolve attributes an event. Primary rule: exact
// (utm_source, utm_campaign, utm_content) match against known placements,
// first by creation order when more than one matches. Fallback: referrer
// classification, applied only when UTM fields are entirely absent.
func (m *Matcher) Resolve(ctx context.Context, in Input) Result {
	if in.UTM.Content != "" {
		if p := m.matchPlacement(ctx, in.UTM); p != nil {
			return Result{
				CampaignID:  p.CampaignID,
				PlacementID: p.ID,
				Channel:     in.UTM.Source,
				Medium:      in.UTM.Medium,
				UTM:         in.UTM,
				Matched:     true,
			}
		}
	}

	if in.UTM.Source != "" || in.UTM.Campaign != "" {
		// Tagged traffic we cannot tie to a placement still counts under
		// whatever the tags claim.
		return Result{
			CampaignID: nonEmpty(in.UTM.Campaign, BucketUnknown),
			Channel:    nonEmpty(in.UTM.Source, "direct"),
			Medium:     nonEmpty(in.UTM.Medium, BucketUnknown),
			UTM:        in.UTM,
		}
	}

	class := classifyReferrer(in.Referrer, in.PageURL)
	return Result{
		CampaignID: class.campaignID,
		Channel:    class.channel,
		Medium:     class.medium,
		UTM:        in.UTM,
	}
}

func (m *Matcher) matchPlacement(ctx context.Context, utm models.UTMSet) *models.Placement {
	placements, err := m.placements.All(ctx)
	if err != nil {
		m.log.Warn("placement scan failed, skipping utm match", zap.Error(err))
		return nil
	}

	var best *models.Placement
	for i := range placements {
		p := &placements[i]
		if p.UTM.Source != utm.Source || p.UTM.Campaign != utm.Campaign || p.UTM.Content != utm.Content {
			continue
		}
		// Tuple uniqueness is enforced at placement creation; the ID
		// tie-break keeps selection deterministic for pre-existing data.
		if best == nil || p.ID < best.ID {
			best = p
		}
	}
	return best
}

func classifyReferrer(referrer, pageURL string) classification {
	if referrer == "" {
		return directClass
	}
	refURL, err := url.Parse(referrer)
	if err != nil || refURL.Hostname() == "" {
		return directClass
	}

	host := strings.ToLower(refURL.Hostname())
	pageHost := ""
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			pageHost = strings.ToLower(u.Hostname())
		}
	}

	for _, rule := range referrerRules {
		if rule.match(host, pageHost) {
			return rule.class
		}
	}
	return directClass
}

func hostContainsAny(host string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(host, n) {
			return true
		}
	}
	return false
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
