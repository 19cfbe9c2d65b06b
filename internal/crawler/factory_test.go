package crawler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyhunter/dealworker/config"
)

func testConfig() *config.Config {
	return &config.Config{
		PpomppuURL:      "https://www.ppomppu.co.kr/zboard/zboard.php?id=ppomppu",
		PpomppuInterval: time.Minute,
		FMKoreaURL:      "https://www.fmkorea.com/hotdeal",
		FMKoreaInterval: time.Minute,
		ClienURL:        "https://www.clien.net/service/board/jirum",
		ClienInterval:   90 * time.Second,
	}
}

func findCrawler(t *testing.T, crawlers []Crawler, provider string) *ConfigurableCrawler {
	t.Helper()
	for _, c := range crawlers {
		if c.GetProvider() == provider {
			return c.(*ConfigurableCrawler)
		}
	}
	t.Fatalf("crawler %s not found", provider)
	return nil
}

func TestCreateCrawlers(t *testing.T) {
	crawlers := CreateCrawlers(testConfig(), nil)
	require.Len(t, crawlers, 3)

	providers := make([]string, len(crawlers))
	for i, c := range crawlers {
		providers[i] = c.GetProvider()
	}
	assert.ElementsMatch(t, []string{"ppomppu", "fmkorea", "clien"}, providers)

	assert.Equal(t, 90*time.Second, findCrawler(t, crawlers, "clien").PollInterval())
}

func TestPpomppuExtraction(t *testing.T) {
	c := findCrawler(t, CreateCrawlers(testConfig(), nil), "ppomppu")

	// 신버전 구조: 첫 a는 썸네일, 두 번째 a가 제목
	html := `
		<table>
			<tr class="baseList">
				<td class="title">
					<a href="view.php?id=ppomppu&no=1"><img src="thumb.jpg"></a>
					<a href="view.php?id=ppomppu&no=1">에어팟 프로 2 (189,000원) [42]</a>
				</td>
			</tr>
			<tr class="list1">
				<td class="title">
					<a href="zboard.php?id=ppomppu&no=2"><font class="list_title">구버전 딜 10,000원</font></a>
				</td>
				<td class="eng list_vspace">9,900원</td>
			</tr>
		</table>
	`
	listings, err := c.extract(docFromHTML(t, html))
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "에어팟 프로 2 (189,000원)", listings[0].Title)
	assert.Equal(t, "https://www.ppomppu.co.kr/zboard/view.php?id=ppomppu&no=1", listings[0].Link)
	assert.Equal(t, "189,000원", listings[0].Price)

	assert.Equal(t, "구버전 딜 10,000원", listings[1].Title)
	assert.Equal(t, "https://www.ppomppu.co.kr/zboard/zboard.php?id=ppomppu&no=2", listings[1].Link)
	// 구버전은 가격 셀이 우선
	assert.Equal(t, "9,900원", listings[1].Price)
}

func TestFMKoreaExtraction(t *testing.T) {
	c := findCrawler(t, CreateCrawlers(testConfig(), nil), "fmkorea")

	html := `
		<div class="fm_best_widget">
			<ul>
				<li class="li_best2_pop0">
					<h3 class="title"><a href="/7000001">[쿠팡] 갤럭시 버즈3 [17]</a></h3>
					<div class="hotdeal_info">
						<span>쇼핑몰: 쿠팡</span>
						<span>가격: 83,075원</span>
					</div>
				</li>
			</ul>
		</div>
	`
	listings, err := c.extract(docFromHTML(t, html))
	require.NoError(t, err)
	require.Len(t, listings, 1)

	assert.Equal(t, "[쿠팡] 갤럭시 버즈3", listings[0].Title)
	assert.Equal(t, "https://www.fmkorea.com/7000001", listings[0].Link)
	assert.Equal(t, "83,075원", listings[0].Price)
}

func TestClienExtraction(t *testing.T) {
	c := findCrawler(t, CreateCrawlers(testConfig(), nil), "clien")

	html := `
		<div class="contents_jirum">
			<div class="list_item symph_row jirum">
				<span class="list_subject" title="삼성전자 990 프로 2TB (199,000원)">삼성전자 990 프로...</span>
				<a data-role="list-title-text" href="/service/board/jirum/123"></a>
			</div>
			<div class="list_item symph_row jirum blocked">
				<span class="list_subject" title="차단된 글">차단된 글</span>
				<a data-role="list-title-text" href="/service/board/jirum/124"></a>
			</div>
		</div>
	`
	listings, err := c.extract(docFromHTML(t, html))
	require.NoError(t, err)
	require.Len(t, listings, 1)

	assert.Equal(t, "삼성전자 990 프로 2TB (199,000원)", listings[0].Title)
	assert.Equal(t, "https://www.clien.net/service/board/jirum/123", listings[0].Link)
	assert.Equal(t, "199,000원", listings[0].Price)
}
