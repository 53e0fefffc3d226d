package ideation

import (
	"sort"
	"strings"
)

// Capability is one corporate capability usable in a business scenario.
type Capability struct {
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Assets      []string `json:"assets"`
	Networks    []string `json:"networks"`
	Strengths   []string `json:"strengths"`
}

// Catalog is the fixed capability catalog scenarios draw from.
var Catalog = []Capability{
	{
		Category:    "都市開発力",
		Name:        "大規模複合開発",
		Description: "丸の内・みなとみらい等の大規模都市開発の実績とノウハウ",
		Assets: []string{
			"丸の内エリア（東京駅前の日本最大級ビジネス地区）",
			"みなとみらい21（横浜の複合都市開発）",
			"大手町（金融・ビジネスの中枢）",
		},
		Networks: []string{
			"大手企業本社（丸の内に集積する約4,300社）",
			"金融機関（メガバンク・証券会社）",
			"外資系企業",
		},
		Strengths: []string{
			"長期的な街づくりビジョン",
			"行政との強固な連携",
			"エリアマネジメント能力",
		},
	},
	{
		Category:    "商業施設運営力",
		Name:        "リテール・商業施設運営",
		Description: "アウトレット・商業施設の開発・運営ノウハウ",
		Assets: []string{
			"プレミアム・アウトレット（国内9施設）",
			"丸の内仲通り（高級ブランド街）",
			"アクアシティお台場",
		},
		Networks: []string{
			"テナント企業（アパレル・飲食・物販）",
			"高級ブランド",
			"エンターテインメント企業",
		},
		Strengths: []string{
			"テナントリーシング力",
			"マーケティング・販促力",
			"顧客データ分析力",
		},
	},
	{
		Category:    "住宅事業力",
		Name:        "住宅開発・管理",
		Description: "高品質な住宅開発と管理サービス",
		Assets: []string{
			"ザ・パークハウスシリーズ（高級マンション）",
			"パークホームズ（ファミリー向けマンション）",
			"賃貸マンション",
		},
		Networks: []string{
			"三菱地所レジデンス",
			"三菱地所コミュニティ（管理会社）",
			"建設会社・設計事務所",
		},
		Strengths: []string{
			"ブランド力",
			"品質管理能力",
			"アフターサービス体制",
		},
	},
	{
		Category:    "国際事業力",
		Name:        "グローバル展開",
		Description: "海外不動産開発・投資の実績",
		Assets: []string{
			"米国オフィスビル",
			"アジア商業施設",
			"欧州不動産投資",
		},
		Networks: []string{
			"海外デベロッパー",
			"国際投資家",
			"グローバル企業",
		},
		Strengths: []string{
			"国際的な資金調達力",
			"クロスボーダー取引経験",
			"現地パートナーシップ",
		},
	},
	{
		Category:    "イノベーション力",
		Name:        "新事業・テクノロジー",
		Description: "PropTech・スマートシティへの取り組み",
		Assets: []string{
			"TMIPスマートシティプラットフォーム",
			"Mec Industry DXセンター",
			"スタートアップ支援施設",
		},
		Networks: []string{
			"スタートアップ企業",
			"テクノロジー企業",
			"大学・研究機関",
		},
		Strengths: []string{
			"オープンイノベーション推進力",
			"デジタル技術活用力",
			"実証実験フィールド提供",
		},
	},
	{
		Category:    "金融・投資力",
		Name:        "不動産金融・投資",
		Description: "REIT・ファンド運営等の金融ノウハウ",
		Assets: []string{
			"日本リテールファンド投資法人",
			"産業ファンド投資法人",
			"プライベートREIT",
		},
		Networks: []string{
			"機関投資家",
			"金融機関",
			"三菱グループ各社",
		},
		Strengths: []string{
			"アセットマネジメント力",
			"資金調達力",
			"リスク管理能力",
		},
	},
}

// categoryTriggers maps idea-text keywords to the capability category
// they boost.
var categoryTriggers = []struct {
	keywords []string
	category string
}{
	{[]string{"スマート", "iot", "ai"}, "イノベーション力"},
	{[]string{"商業", "店舗", "リテール"}, "商業施設運営力"},
	{[]string{"オフィス", "ビジネス", "企業"}, "都市開発力"},
	{[]string{"住宅", "住まい", "マンション"}, "住宅事業力"},
	{[]string{"グローバル", "海外", "国際"}, "国際事業力"},
	{[]string{"投資", "ファンド", "金融"}, "金融・投資力"},
}

// SelectCapabilities picks the catalog entries most relevant to the
// idea text. Keyword matches boost a category; urban development and
// innovation always carry a small base score. Ties keep catalog order.
func SelectCapabilities(ideaText string, max int) []Capability {
	if max <= 0 {
		max = 3
	}
	lowered := strings.ToLower(ideaText)

	type scored struct {
		capability Capability
		score      int
	}
	scores := make([]scored, 0, len(Catalog))
	for _, capability := range Catalog {
		score := 0
		for _, trigger := range categoryTriggers {
			if trigger.category != capability.Category {
				continue
			}
			for _, kw := range trigger.keywords {
				if strings.Contains(lowered, kw) {
					score += 3
					break
				}
			}
		}
		switch capability.Category {
		case "都市開発力", "イノベーション力":
			score++
		}
		scores = append(scores, scored{capability, score})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if max > len(scores) {
		max = len(scores)
	}
	selected := make([]Capability, 0, max)
	for _, s := range scores[:max] {
		selected = append(selected, s.capability)
	}
	return selected
}
