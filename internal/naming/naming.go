// Package naming builds campaign IDs, UTM parameters, QR identifiers and
// final tracking URLs from structured inputs. Every function is pure and
// deterministic: identical inputs always yield byte-identical output, which
// the attribution matcher relies on to reconstruct expected UTM tuples.
package naming

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
)

var (
	ErrInvalidDate  = errors.New("naming: date does not parse as YYYY-MM-DD")
	ErrEmptyField   = errors.New("naming: required field is empty")
	ErrInvalidURL   = errors.New("naming: base url is not an absolute url")
	nonIDChars      = regexp.MustCompile(`[^a-z0-9-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	yearMonthPrefix = regexp.MustCompile(`^\d{4}-\d{2}`)
)

// Normalize lowercases, trims, collapses whitespace runs to hyphens and
// strips everything outside [a-z0-9-].
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonIDChars.ReplaceAllString(s, "")
}

// FormatYearMonth reduces a YYYY-MM-DD date string to YYYY-MM.
func FormatYearMonth(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format("2006-01"), nil
}

// PadSequence zero-pads a placement sequence number to two digits.
func PadSequence(seq int) string {
	return fmt.Sprintf("%02d", seq)
}

// YearMonthOf extracts the leading YYYY-MM of a campaign ID, or "" if the ID
// does not start with one.
func YearMonthOf(campaignID string) string {
	return yearMonthPrefix.FindString(campaignID)
}

// BuildCampaignID formats {YYYY-MM}_{GEO}-{CHAN}-{TYPE}-{CONCEPT}-{LANG}.
// Example: 2025-10_ZH-FB-PAID-CHEAPEST-BASKET-DE.
func BuildCampaignID(dateStart, geo, primaryChannel, campaignType, concept, language string) (string, error) {
	if primaryChannel == "" {
		primaryChannel = "MULTI"
	}
	for _, f := range []string{geo, campaignType, concept, language} {
		if strings.TrimSpace(f) == "" {
			return "", ErrEmptyField
		}
	}

	datePrefix, err := FormatYearMonth(dateStart)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s_%s-%s-%s-%s-%s",
		datePrefix,
		strings.ToUpper(geo),
		strings.ToUpper(primaryChannel),
		strings.ToUpper(campaignType),
		strings.ToUpper(Normalize(concept)),
		strings.ToUpper(language),
	), nil
}

// BuildUTMs derives the UTM quadruple for a placement:
//
//	source   = lowercase channel
//	medium   = lowercase medium
//	campaign = {YYYY-MM}_{geo}_{concept}   (lowercase, normalized)
//	content  = {lang}_{adtype}_{seq}       (lowercase, seq zero-padded)
func BuildUTMs(channel, medium, dateStart, geo, concept, language, adType string, sequence int) (models.UTMSet, error) {
	for _, f := range []string{channel, medium, geo, concept, language, adType} {
		if strings.TrimSpace(f) == "" {
			return models.UTMSet{}, ErrEmptyField
		}
	}

	datePrefix, err := FormatYearMonth(dateStart)
	if err != nil {
		return models.UTMSet{}, err
	}

	return models.UTMSet{
		Source:   strings.ToLower(channel),
		Medium:   strings.ToLower(medium),
		Campaign: fmt.Sprintf("%s_%s_%s", datePrefix, strings.ToLower(geo), Normalize(concept)),
		Content:  fmt.Sprintf("%s_%s_%s", strings.ToLower(language), strings.ToLower(adType), PadSequence(sequence)),
	}, nil
}

// BuildQRID formats QR-{GEO}-{CHAN4}-{CONCEPT}-{LANG}-{SEQ}. Generated for
// every placement so print media stays trackable.
func BuildQRID(channel, geo, concept, language string, sequence int) string {
	channelShort := channel
	if len(channelShort) > 4 {
		channelShort = channelShort[:4]
	}
	return fmt.Sprintf("QR-%s-%s-%s-%s-%s",
		strings.ToUpper(geo),
		strings.ToUpper(channelShort),
		strings.ToUpper(Normalize(concept)),
		strings.ToUpper(language),
		PadSequence(sequence),
	)
}

// BuildFinalURL sets the utm_* parameters on baseURL, overwriting any
// pre-existing same-named parameters, and sets qr only when qrID is non-empty.
func BuildFinalURL(baseURL string, utm models.UTMSet, qrID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", ErrInvalidURL
	}

	q := u.Query()
	q.Set("utm_source", utm.Source)
	q.Set("utm_medium", utm.Medium)
	q.Set("utm_campaign", utm.Campaign)
	q.Set("utm_content", utm.Content)
	if qrID != "" {
		q.Set("qr", qrID)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
