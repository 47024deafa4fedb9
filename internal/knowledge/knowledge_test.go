package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticLoaderComplete(t *testing.T) {
	base, err := StaticLoader{}.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, base.IsLoaded())
	assert.NoError(t, base.Validate())
	assert.Len(t, base.Palaces(), 6)
	assert.Len(t, base.Beasts(), 6)
	assert.Len(t, base.Branches(), 12)
}

func TestStaticLoaderHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := StaticLoader{}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPalaceCanonicalOrder(t *testing.T) {
	base, err := StaticLoader{}.Load(context.Background())
	require.NoError(t, err)

	wantNames := []string{"大安", "留连", "速喜", "赤口", "小吉", "空亡"}
	for pos := 1; pos <= 6; pos++ {
		p, ok := base.PalaceAt(pos)
		require.True(t, ok, "position %d", pos)
		assert.Equal(t, wantNames[pos-1], p.Name)
		assert.Equal(t, pos, p.Position)
		assert.NotEmpty(t, p.Meaning)
	}

	p, _ := base.PalaceAt(1)
	assert.Equal(t, ElementWood, p.Element)
	p, _ = base.PalaceAt(6)
	assert.Equal(t, ElementEarth, p.Element)
}

func TestBranchWindows(t *testing.T) {
	base, err := StaticLoader{}.Load(context.Background())
	require.NoError(t, err)

	zi, ok := base.BranchByName("子")
	require.True(t, ok)
	assert.Equal(t, 23, zi.StartHour)
	assert.Equal(t, ElementWater, zi.Element)

	// Every other branch starts at an odd hour and the covered wall-clock
	// hours tile the day.
	covered := make(map[int]string)
	for _, br := range base.Branches() {
		for h := 0; h < 2; h++ {
			covered[(br.StartHour+h)%24] = br.Name
		}
	}
	require.Len(t, covered, 24)
	assert.Equal(t, "子", covered[0])
	assert.Equal(t, "子", covered[23])
	assert.Equal(t, "午", covered[12])
}

func TestRelationMatrix(t *testing.T) {
	base, err := StaticLoader{}.Load(context.Background())
	require.NoError(t, err)

	t.Run("generation cycle", func(t *testing.T) {
		cycle := []Element{ElementWood, ElementFire, ElementEarth, ElementMetal, ElementWater}
		for i, a := range cycle {
			b := cycle[(i+1)%5]
			assert.Equal(t, RelationGenerates, base.Relation(a, b), "%s generates %s", a, b)
			assert.Equal(t, RelationGeneratedBy, base.Relation(b, a), "%s generated by %s", b, a)
		}
	})

	t.Run("overcoming cycle", func(t *testing.T) {
		cycle := []Element{ElementWood, ElementEarth, ElementWater, ElementFire, ElementMetal}
		for i, a := range cycle {
			b := cycle[(i+1)%5]
			assert.Equal(t, RelationOvercomes, base.Relation(a, b), "%s overcomes %s", a, b)
			assert.Equal(t, RelationOvercomeBy, base.Relation(b, a), "%s overcome by %s", b, a)
		}
	})

	t.Run("same element", func(t *testing.T) {
		for _, el := range []Element{ElementWood, ElementFire, ElementEarth, ElementMetal, ElementWater} {
			assert.Equal(t, RelationSame, base.Relation(el, el))
		}
	})

	t.Run("unknown element", func(t *testing.T) {
		assert.Equal(t, RelationNone, base.Relation("风", ElementWood))
		assert.Equal(t, RelationNone, base.Relation(ElementWood, "风"))
	})
}

func TestKinRoles(t *testing.T) {
	base, err := StaticLoader{}.Load(context.Background())
	require.NoError(t, err)

	for _, name := range []string{KinSelf, KinParent, KinSibling, KinOfficial, KinWealth, KinOffspring} {
		k, ok := base.KinByName(name)
		require.True(t, ok, "missing kin %q", name)
		assert.Equal(t, name, k.Name)
		assert.NotEmpty(t, k.Meaning)
	}
}

func TestFileLoaderRoundTrip(t *testing.T) {
	doc := `
palaces:
  - {name: 大安, position: 1, element: 木, meaning: 平安}
  - {name: 留连, position: 2, element: 火, meaning: 拖延}
  - {name: 速喜, position: 3, element: 火, meaning: 喜讯}
  - {name: 赤口, position: 4, element: 金, meaning: 口舌}
  - {name: 小吉, position: 5, element: 水, meaning: 小利}
  - {name: 空亡, position: 6, element: 土, meaning: 落空}
beasts:
  - {name: 青龙, position: 1, element: 木}
  - {name: 朱雀, position: 2, element: 火}
  - {name: 勾陈, position: 3, element: 土}
  - {name: 腾蛇, position: 4, element: 土}
  - {name: 白虎, position: 5, element: 金}
  - {name: 玄武, position: 6, element: 水}
kin:
  - {name: 世爻, meaning: 自己}
  - {name: 父母, meaning: 长辈}
  - {name: 兄弟, meaning: 同辈}
  - {name: 官鬼, meaning: 压力}
  - {name: 妻财, meaning: 钱财}
  - {name: 子孙, meaning: 晚辈}
branches:
  - {name: 子, order: 1, element: 水, start_hour: 23, window: "23:00-01:00"}
  - {name: 丑, order: 2, element: 土, start_hour: 1, window: "01:00-03:00"}
  - {name: 寅, order: 3, element: 木, start_hour: 3, window: "03:00-05:00"}
  - {name: 卯, order: 4, element: 木, start_hour: 5, window: "05:00-07:00"}
  - {name: 辰, order: 5, element: 土, start_hour: 7, window: "07:00-09:00"}
  - {name: 巳, order: 6, element: 火, start_hour: 9, window: "09:00-11:00"}
  - {name: 午, order: 7, element: 火, start_hour: 11, window: "11:00-13:00"}
  - {name: 未, order: 8, element: 土, start_hour: 13, window: "13:00-15:00"}
  - {name: 申, order: 9, element: 金, start_hour: 15, window: "15:00-17:00"}
  - {name: 酉, order: 10, element: 金, start_hour: 17, window: "17:00-19:00"}
  - {name: 戌, order: 11, element: 土, start_hour: 19, window: "19:00-21:00"}
  - {name: 亥, order: 12, element: 水, start_hour: 21, window: "21:00-23:00"}
relations:
  - {from: 木, to: 木, relation: 同}
  - {from: 木, to: 火, relation: 生}
  - {from: 木, to: 土, relation: 克}
  - {from: 木, to: 金, relation: 克我}
  - {from: 木, to: 水, relation: 生我}
  - {from: 火, to: 木, relation: 生我}
  - {from: 火, to: 火, relation: 同}
  - {from: 火, to: 土, relation: 生}
  - {from: 火, to: 金, relation: 克}
  - {from: 火, to: 水, relation: 克我}
  - {from: 土, to: 木, relation: 克我}
  - {from: 土, to: 火, relation: 生我}
  - {from: 土, to: 土, relation: 同}
  - {from: 土, to: 金, relation: 生}
  - {from: 土, to: 水, relation: 克}
  - {from: 金, to: 木, relation: 克}
  - {from: 金, to: 火, relation: 克我}
  - {from: 金, to: 土, relation: 生我}
  - {from: 金, to: 金, relation: 同}
  - {from: 金, to: 水, relation: 生}
  - {from: 水, to: 木, relation: 生}
  - {from: 水, to: 火, relation: 克}
  - {from: 水, to: 土, relation: 克我}
  - {from: 水, to: 金, relation: 生我}
  - {from: 水, to: 水, relation: 同}
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	base, err := FileLoader{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, base.IsLoaded())

	p, ok := base.PalaceAt(3)
	require.True(t, ok)
	assert.Equal(t, "速喜", p.Name)
	assert.Equal(t, RelationGenerates, base.Relation(ElementWood, ElementFire))
}

func TestFileLoaderRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("palaces:\n  - {name: 大安, position: 1, element: 木}\n"), 0644))

	_, err := FileLoader{Path: path}.Load(context.Background())
	assert.ErrorContains(t, err, "incomplete")
}

func TestFileLoaderMissingFile(t *testing.T) {
	_, err := FileLoader{Path: filepath.Join(t.TempDir(), "nope.yaml")}.Load(context.Background())
	assert.Error(t, err)
}
