package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"moneyhunter/dealworker/config"
	"moneyhunter/dealworker/helpers"
	"moneyhunter/dealworker/services/cache"
)

// Currency-amount pattern used when a source has no structured price field.
// The whole match is kept, unit included.
const defaultPriceRegex = `\d[\d,]*\s*원`

// CreateCrawlers creates all the crawlers based on the configuration
func CreateCrawlers(cfg *config.Config, cacheSvc cache.CacheService) []Crawler {
	configurations := []Config{
		ppomppuConfig(cfg),
		fmkoreaConfig(cfg),
		clienConfig(cfg),
	}

	var crawlers []Crawler
	for _, c := range configurations {
		crawlers = append(crawlers, NewConfigurableCrawler(c, cacheSvc))
	}
	return crawlers
}

// ppomppuConfig builds the ppomppu source.
//
// 뽐뿌 신버전 구조: td.title 안에 a 태그가 2개 (첫 번째는 썸네일, 두 번째가
// 실제 제목). 구버전(tr.list0/list1, font.list_title)도 폴백으로 지원.
func ppomppuConfig(cfg *config.Config) Config {
	// Pick the anchor carrying the board link and the title text; fall back
	// to any anchor with text. The fallback can occasionally grab a
	// non-listing link, accepted as-is.
	pickAnchor := func(s *goquery.Selection) *goquery.Selection {
		var chosen *goquery.Selection
		anchors := s.Find("td.title a")
		anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
			text := strings.TrimSpace(a.Text())
			href, _ := a.Attr("href")
			if text != "" && (strings.Contains(href, "view.php") || strings.Contains(href, "zboard.php")) {
				chosen = a
				return false
			}
			return true
		})
		if chosen != nil {
			return chosen
		}
		anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.TrimSpace(a.Text()) != "" {
				chosen = a
				return false
			}
			return true
		})
		return chosen
	}

	titleHandler := func(s *goquery.Selection) string {
		if a := pickAnchor(s); a != nil {
			return a.Text()
		}
		return s.Find("font.list_title").Text()
	}

	linkHandler := func(s *goquery.Selection) string {
		if a := pickAnchor(s); a != nil {
			href, _ := a.Attr("href")
			return strings.TrimSpace(href)
		}
		return ""
	}

	// 구버전 가격 셀
	priceHandler := func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find("td.eng.list_vspace").Text())
	}

	return Config{
		URL:          cfg.PpomppuURL,
		CacheKey:     "ppomppu_rate_limited",
		BlockTime:    500,
		BaseURL:      "https://www.ppomppu.co.kr/zboard/",
		Provider:     "ppomppu",
		Label:        "뽐뿌 핫딜",
		PollInterval: cfg.PpomppuInterval,
		Selectors: Selectors{
			ListItem:      "tr.baseList, tr.list0, tr.list1",
			PriceRegex:    defaultPriceRegex,
			TitleHandlers: []ElementHandler{titleHandler},
			LinkHandlers:  []ElementHandler{linkHandler},
			PriceHandlers: []ElementHandler{priceHandler},
		},
	}
}

// fmkoreaConfig builds the fmkorea source. 봇 차단이 심한 사이트라 리얼한
// 브라우저 헤더가 필수 (helpers.FetchWithBrowserHeaders).
func fmkoreaConfig(cfg *config.Config) Config {
	// 가격은 div.hotdeal_info 의 "가격: 83,075원" 스팬에서
	priceHandler := func(s *goquery.Selection) string {
		var price string
		s.Find("div.hotdeal_info span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			text := strings.TrimSpace(span.Text())
			if strings.Contains(text, "가격:") || strings.Contains(text, "가격 :") {
				if part, err := helpers.GetSplitPart(text, ":", 1); err == nil {
					price = strings.TrimSpace(part)
				}
				return false
			}
			return true
		})
		return price
	}

	return Config{
		URL:          cfg.FMKoreaURL,
		CacheKey:     "fmkorea_rate_limited",
		BlockTime:    300,
		BaseURL:      "https://www.fmkorea.com",
		Provider:     "fmkorea",
		Label:        "펨코 핫딜",
		PollInterval: cfg.FMKoreaInterval,
		Selectors: Selectors{
			ListItem:      "div.fm_best_widget li.li_best2_pop0",
			Title:         "h3.title a",
			Link:          "h3.title a",
			PriceRegex:    defaultPriceRegex,
			PriceHandlers: []ElementHandler{priceHandler},
		},
	}
}

// clienConfig builds the clien source. 제목은 span.list_subject 의 title
// 속성에 들어있고, 가격은 제목 끝의 (N,NNN원) 패턴.
func clienConfig(cfg *config.Config) Config {
	return Config{
		URL:          cfg.ClienURL,
		CacheKey:     "clien_rate_limited",
		BlockTime:    500,
		BaseURL:      "https://www.clien.net",
		Provider:     "clien",
		Label:        "클리앙 핫딜",
		PollInterval: cfg.ClienInterval,
		Selectors: Selectors{
			ListItem:    "div.list_item.symph_row.jirum",
			Title:       "span.list_subject",
			Link:        "a[data-role='list-title-text']",
			PriceRegex:  `\(([0-9,]+원)\)$`,
			ClassFilter: "blocked",
		},
	}
}
