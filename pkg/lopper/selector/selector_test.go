package selector

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

func buildFixture() *lopper.Tree {
	tree := lopper.NewTree()
	soc := lopper.NewNode("soc")
	tree.Add("/soc", soc)
	uart0 := lopper.NewNode("uart0")
	uart0.SetProperty("status", lopper.NewStringValue("okay"))
	tree.Add("/soc/uart0", uart0)
	uart1 := lopper.NewNode("uart1")
	uart1.SetProperty("status", lopper.NewStringValue("disabled"))
	tree.Add("/soc/uart1", uart1)
	gpio := lopper.NewNode("gpio0")
	gpio.SetProperty("status", lopper.NewStringValue("okay"))
	tree.Add("/soc/gpio0", gpio)
	return tree
}

func TestSelectorGrammar(t *testing.T) {
	Convey("Parse splits a clause on up to two colons", t, func() {
		Convey("a bare path has no property predicate", func() {
			c := Parse("/soc/uart0")
			So(c.PathRegex, ShouldEqual, "/soc/uart0")
			So(c.HasProp, ShouldBeFalse)
			So(c.HasVal, ShouldBeFalse)
		})

		Convey("PATH:PROP carries a presence-only predicate", func() {
			c := Parse("/soc/.*:status")
			So(c.PathRegex, ShouldEqual, "/soc/.*")
			So(c.PropName, ShouldEqual, "status")
			So(c.HasProp, ShouldBeTrue)
			So(c.HasVal, ShouldBeFalse)
		})

		Convey("PATH:PROP:VAL carries a full equality predicate", func() {
			c := Parse("/soc/.*:status:okay")
			So(c.PropName, ShouldEqual, "status")
			So(c.PropVal, ShouldEqual, "okay")
			So(c.HasVal, ShouldBeTrue)
		})
	})

	Convey("Apply resolves select_N clauses against a tree", t, func() {
		tree := buildFixture()

		Convey("a single PATH:PROP:VAL clause selects every matching node", func() {
			err := Apply(tree, []string{"/soc/.*:status:okay"})
			So(err, ShouldBeNil)
			So(len(tree.Selected()), ShouldEqual, 2)
		})

		Convey("a negated PROPVAL inverts the equality test", func() {
			err := Apply(tree, []string{"/soc/.*:status:!okay"})
			So(err, ShouldBeNil)
			So(len(tree.Selected()), ShouldEqual, 1)
			So(tree.Selected()[0].Name(), ShouldEqual, "uart1")
		})

		Convey("a negated PROPNAME tests for absence", func() {
			extra := lopper.NewNode("spi0")
			tree.Add("/soc/spi0", extra)
			err := Apply(tree, []string{"/soc/.*:!status"})
			So(err, ShouldBeNil)
			So(len(tree.Selected()), ShouldEqual, 1)
			So(tree.Selected()[0].Name(), ShouldEqual, "spi0")
		})

		Convey("multiple clauses in one select_N union their pool", func() {
			err := Apply(tree, []string{"/soc/uart0", "/soc/uart1"})
			So(err, ShouldBeNil)
			So(len(tree.Selected()), ShouldEqual, 2)
		})

		Convey("an empty-path clause chains an AND filter over the previous selection", func() {
			So(Apply(tree, []string{"/soc/.*"}), ShouldBeNil)
			err := Apply(tree, []string{":status:okay"})
			So(err, ShouldBeNil)
			So(len(tree.Selected()), ShouldEqual, 2)
		})

		Convey("an empty clause value clears the selection outright", func() {
			So(Apply(tree, []string{"/soc/.*"}), ShouldBeNil)
			So(len(tree.Selected()), ShouldBeGreaterThan, 0)
			err := Apply(tree, []string{""})
			So(err, ShouldBeNil)
			So(tree.Selected(), ShouldBeEmpty)
		})
	})
}
