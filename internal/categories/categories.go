// Package categories defines the fixed research category list used by
// the information collection stage.
package categories

// Category is one research category with its search vocabulary.
type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	FocusAreas  []string `json:"focus_areas"`
}

// All is the canonical category list. Trend collection covers every
// entry; the reuse decision requires full coverage before reusing
// previously persisted results.
var All = []Category{
	{
		ID:          "proptech",
		Name:        "PropTech（不動産テック）",
		Description: "不動産業界のデジタル化・テクノロジー活用",
		Keywords:    []string{"PropTech", "不動産テック", "スマートビルディング", "IoT不動産"},
		FocusAreas:  []string{"スマートビルディング", "VR内覧", "AI査定", "ブロックチェーン不動産"},
	},
	{
		ID:          "smartcity",
		Name:        "スマートシティ",
		Description: "都市のデジタル化・持続可能な街づくり",
		Keywords:    []string{"スマートシティ", "スマートコミュニティ", "都市OS", "MaaS"},
		FocusAreas:  []string{"都市OS", "エネルギー管理", "モビリティ", "デジタルツイン"},
	},
	{
		ID:          "fintech",
		Name:        "FinTech（金融テック）",
		Description: "不動産金融・投資のデジタル化",
		Keywords:    []string{"不動産FinTech", "REIT", "不動産クラウドファンディング", "不動産投資"},
		FocusAreas:  []string{"不動産投資プラットフォーム", "デジタル証券", "AI投資判断", "ブロックチェーン金融"},
	},
	{
		ID:          "sustainability",
		Name:        "サステナビリティ",
		Description: "環境配慮型不動産・グリーンビルディング",
		Keywords:    []string{"グリーンビルディング", "カーボンニュートラル", "ESG不動産", "LEED認証"},
		FocusAreas:  []string{"脱炭素建築", "再生可能エネルギー", "サーキュラーエコノミー", "グリーンファイナンス"},
	},
	{
		ID:          "healthtech",
		Name:        "ヘルスケア・ウェルネス",
		Description: "健康・ウェルビーイング重視の不動産",
		Keywords:    []string{"ウェルネス不動産", "ヘルスケア施設", "WELL認証", "バイオフィリックデザイン"},
		FocusAreas:  []string{"健康経営オフィス", "メディカルモール", "シニアリビング", "フィットネス施設"},
	},
	{
		ID:          "retailtech",
		Name:        "リテールテック",
		Description: "小売・商業施設のデジタル化",
		Keywords:    []string{"リテールテック", "OMO", "体験型商業施設", "スマートストア"},
		FocusAreas:  []string{"無人店舗", "体験型施設", "デジタルサイネージ", "ECと実店舗融合"},
	},
	{
		ID:          "logistics",
		Name:        "物流・ロジスティクス",
		Description: "物流施設の高度化・自動化",
		Keywords:    []string{"物流不動産", "ロジスティクス4.0", "自動倉庫", "ラストワンマイル"},
		FocusAreas:  []string{"自動化倉庫", "コールドチェーン", "ドローン配送", "マルチテナント型物流"},
	},
	{
		ID:          "workspace",
		Name:        "ワークスペース革新",
		Description: "新しい働き方に対応したオフィス空間",
		Keywords:    []string{"フレキシブルオフィス", "コワーキング", "ハイブリッドワーク", "スマートオフィス"},
		FocusAreas:  []string{"ABW（Activity Based Working）", "サテライトオフィス", "バーチャルオフィス", "ウェルビーイングオフィス"},
	},
	{
		ID:          "entertainment",
		Name:        "エンターテイメント・体験",
		Description: "エンタメ・体験型施設の新展開",
		Keywords:    []string{"エンターテイメント施設", "テーマパーク", "eスポーツ", "イマーシブ体験"},
		FocusAreas:  []string{"VR/AR施設", "eスポーツアリーナ", "イマーシブシアター", "デジタルアート"},
	},
	{
		ID:          "mobility",
		Name:        "モビリティ・交通",
		Description: "新しい移動手段と不動産の融合",
		Keywords:    []string{"モビリティハブ", "EV充電", "自動運転", "MaaS"},
		FocusAreas:  []string{"EV充電インフラ", "モビリティステーション", "空飛ぶクルマ", "シェアモビリティ"},
	},
	{
		ID:          "education",
		Name:        "教育・人材育成",
		Description: "教育施設・人材育成空間の革新",
		Keywords:    []string{"EdTech", "教育施設", "STEAM教育", "リカレント教育"},
		FocusAreas:  []string{"デジタル教育施設", "イノベーションセンター", "産学連携施設", "スキルアップ施設"},
	},
	{
		ID:          "datatech",
		Name:        "データ・AI活用",
		Description: "ビッグデータ・AIの不動産活用",
		Keywords:    []string{"不動産AI", "ビッグデータ", "予測分析", "デジタルツイン"},
		FocusAreas:  []string{"AI価格査定", "需要予測", "最適化アルゴリズム", "IoTデータ活用"},
	},
}

// ByID returns the category with the given ID, or nil.
func ByID(id string) *Category {
	for i := range All {
		if All[i].ID == id {
			return &All[i]
		}
	}
	return nil
}

// AllIDs returns every category ID in declaration order.
func AllIDs() []string {
	ids := make([]string, len(All))
	for i, c := range All {
		ids[i] = c.ID
	}
	return ids
}
