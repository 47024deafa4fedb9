package knowledge

// Canonical rule set. This mirrors the seed data the production database is
// initialized with, so StaticLoader and a DB-backed loader produce identical
// bases.

var canonicalPalaces = []Palace{
	{
		Name: "大安", Position: 1, Element: ElementWood,
		Meaning: "主安定吉祥，宜静待时机，凡事以稳为先。",
		Attributes: map[string]string{
			"direction": "东方", "keyword": "稳定", "nature": "上吉",
			"advice": "万事大吉，可放心进行，稳定发展",
		},
	},
	{
		Name: "留连", Position: 2, Element: ElementFire,
		Meaning: "主反复迟缓，进展受阻，多留意纠缠之事。",
		Attributes: map[string]string{
			"direction": "南方", "keyword": "拖延", "nature": "凶中带吉",
			"advice": "需耐心等待，不宜急躁，曲折中有希望",
		},
	},
	{
		Name: "速喜", Position: 3, Element: ElementFire,
		Meaning: "主事情顺遂，利于快速推进，宜把握机会。",
		Attributes: map[string]string{
			"direction": "南方", "keyword": "捷报", "nature": "上吉",
			"advice": "好消息即将到来，顺利成功，喜事临门",
		},
	},
	{
		Name: "赤口", Position: 4, Element: ElementMetal,
		Meaning: "主口舌是非，宜避免争执冲突，谨言慎行。",
		Attributes: map[string]string{
			"direction": "西方", "keyword": "口舌", "nature": "大凶",
			"advice": "慎言慎行，避免冲突，防止口舌之争",
		},
	},
	{
		Name: "小吉", Position: 5, Element: ElementWater,
		Meaning: "主小有收获，宜循序渐进，积小成多。",
		Attributes: map[string]string{
			"direction": "北方", "keyword": "稳进", "nature": "吉中带凶",
			"advice": "小有所成，不可贪大求全，稳中求进",
		},
	},
	{
		Name: "空亡", Position: 6, Element: ElementEarth,
		Meaning: "主虚耗延迟，宜审慎评估，避免盲目投入。",
		Attributes: map[string]string{
			"direction": "中央", "keyword": "停滞", "nature": "大凶",
			"advice": "难有结果，虚耗精力，应及时调整或放弃",
		},
	},
}

var canonicalBeasts = []Beast{
	{Name: "青龙", Position: 1, Element: ElementWood, Characteristics: "高雅、威严、正直、主动", Meaning: "象征高贵、权威、贵人相助、文书喜讯"},
	{Name: "朱雀", Position: 2, Element: ElementFire, Characteristics: "活跃、多言、敏感、聪明", Meaning: "象征言语、文字、交流、灵活多变"},
	{Name: "勾陈", Position: 3, Element: ElementEarth, Characteristics: "稳重、忧郁、保守、压抑", Meaning: "象征阻滞、疾病、忧愁、压力"},
	{Name: "腾蛇", Position: 4, Element: ElementFire, Characteristics: "多变、敏感、灵活、阴险", Meaning: "象征变化、惊吓、不安、转折"},
	{Name: "白虎", Position: 5, Element: ElementMetal, Characteristics: "刚猛、直接、凶狠、冲动", Meaning: "象征威猛、凶险、伤害、突发状况"},
	{Name: "玄武", Position: 6, Element: ElementWater, Characteristics: "隐忍、谨慎、机智、自保", Meaning: "象征隐秘、盗窃、背叛、潜伏"},
}

// KinSelf is the role assigned to the landing palace itself; the other five
// roles derive from the element relation against the taiji element.
const (
	KinSelf      = "世爻"
	KinParent    = "父母"
	KinSibling   = "兄弟"
	KinOfficial  = "官鬼"
	KinWealth    = "妻财"
	KinOffspring = "子孙"
)

var canonicalKin = []Kin{
	{Name: KinSelf, Relationship: "自身太极", Meaning: "代表求测者自身的状态与立场", UsageContext: "自身、本体、当事人"},
	{Name: KinParent, Relationship: "长辈权威", Meaning: "代表长辈、保护、房产、学问", UsageContext: "家庭、学校、教育机构、房地产"},
	{Name: KinSibling, Relationship: "同辈伙伴", Meaning: "代表竞争、同辈、朋友、合作伙伴", UsageContext: "社交圈、团队项目、合作企业"},
	{Name: KinOfficial, Relationship: "职责压力", Meaning: "代表外部权威、管理者、事业、压力", UsageContext: "工作、事业、官场、法律、管理层"},
	{Name: KinWealth, Relationship: "财富伴侣", Meaning: "代表财运、钱财、情感", UsageContext: "财务、投资、银行、婚恋、商业"},
	{Name: KinOffspring, Relationship: "成果晚辈", Meaning: "代表喜庆、子女、学业、休闲", UsageContext: "家庭教育、文娱活动、节日庆典"},
}

var canonicalBranches = []Branch{
	{Name: "子", Order: 1, Element: ElementWater, StartHour: 23, Window: "子时(23:00-01:00)", Meaning: "代表机密、聪明、流动性强，亦主狡猾、感情泛滥。"},
	{Name: "丑", Order: 2, Element: ElementEarth, StartHour: 1, Window: "丑时(01:00-03:00)", Meaning: "代表金融、务实，亦主倔强、抱怨。"},
	{Name: "寅", Order: 3, Element: ElementWood, StartHour: 3, Window: "寅时(03:00-05:00)", Meaning: "代表官贵、清高、文化、智慧。"},
	{Name: "卯", Order: 4, Element: ElementWood, StartHour: 5, Window: "卯时(05:00-07:00)", Meaning: "代表交通、买卖、信息，主忠诚与灵活。"},
	{Name: "辰", Order: 5, Element: ElementEarth, StartHour: 7, Window: "辰时(07:00-09:00)", Meaning: "代表医巫卜相、倔强、宗教人士。"},
	{Name: "巳", Order: 6, Element: ElementFire, StartHour: 9, Window: "巳时(09:00-11:00)", Meaning: "代表文书、消息、精明、多疑。"},
	{Name: "午", Order: 7, Element: ElementFire, StartHour: 11, Window: "午时(11:00-13:00)", Meaning: "代表荣誉、文艺、敏捷、冲动。"},
	{Name: "未", Order: 8, Element: ElementEarth, StartHour: 13, Window: "未时(13:00-15:00)", Meaning: "代表皮肤、口食、辩论能力。"},
	{Name: "申", Order: 9, Element: ElementMetal, StartHour: 15, Window: "申时(15:00-17:00)", Meaning: "代表武术、军人、执法。"},
	{Name: "酉", Order: 10, Element: ElementMetal, StartHour: 17, Window: "酉时(17:00-19:00)", Meaning: "代表化妆品、美容、首饰。"},
	{Name: "戌", Order: 11, Element: ElementEarth, StartHour: 19, Window: "戌时(19:00-21:00)", Meaning: "代表黑社会、信仰、诈骗。"},
	{Name: "亥", Order: 12, Element: ElementWater, StartHour: 21, Window: "亥时(21:00-23:00)", Meaning: "代表憨直、助人为乐，亦主暗昧之地。"},
}

// canonicalRelations holds relation(row, col) for every element pair.
var canonicalRelations = map[Element]map[Element]Relation{
	ElementWood: {
		ElementWood:  RelationSame,
		ElementFire:  RelationGenerates,
		ElementEarth: RelationOvercomes,
		ElementMetal: RelationOvercomeBy,
		ElementWater: RelationGeneratedBy,
	},
	ElementFire: {
		ElementWood:  RelationGeneratedBy,
		ElementFire:  RelationSame,
		ElementEarth: RelationGenerates,
		ElementMetal: RelationOvercomes,
		ElementWater: RelationOvercomeBy,
	},
	ElementEarth: {
		ElementWood:  RelationOvercomeBy,
		ElementFire:  RelationGeneratedBy,
		ElementEarth: RelationSame,
		ElementMetal: RelationGenerates,
		ElementWater: RelationOvercomes,
	},
	ElementMetal: {
		ElementWood:  RelationOvercomes,
		ElementFire:  RelationOvercomeBy,
		ElementEarth: RelationGeneratedBy,
		ElementMetal: RelationSame,
		ElementWater: RelationGenerates,
	},
	ElementWater: {
		ElementWood:  RelationGenerates,
		ElementFire:  RelationOvercomes,
		ElementEarth: RelationOvercomeBy,
		ElementMetal: RelationGeneratedBy,
		ElementWater: RelationSame,
	},
}
