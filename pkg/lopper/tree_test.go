package lopper

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTreeInvariants(t *testing.T) {
	Convey("A freshly-built tree", t, func() {
		tree := NewTree()

		Convey("starts with just a root and no selection", func() {
			So(tree.Root, ShouldNotBeNil)
			So(tree.Selected(), ShouldBeEmpty)
		})

		Convey("Add grafts a node under an existing parent and syncs the path index", func() {
			cpu0 := NewNode("cpu0")
			err := tree.Add("/cpus/cpu0", cpu0)
			So(err, ShouldNotBeNil) // parent "/cpus" doesn't exist yet

			cpus := NewNode("cpus")
			So(tree.Add("/cpus", cpus), ShouldBeNil)
			So(tree.Add("/cpus/cpu0", cpu0), ShouldBeNil)

			found, ok := tree.LookupByPath("/cpus/cpu0")
			So(ok, ShouldBeTrue)
			So(found, ShouldEqual, cpu0)
		})

		Convey("Add refuses to occupy a path twice", func() {
			So(tree.Add("/foo", NewNode("foo")), ShouldBeNil)
			err := tree.Add("/foo", NewNode("foo"))
			So(err, ShouldNotBeNil)
		})

		Convey("labels and phandles resolve through Sync", func() {
			n := NewNode("uart0")
			n.AddLabel("uart0")
			n.SetPhandle(7)
			So(tree.Add("/uart0", n), ShouldBeNil)

			byLabel, ok := tree.LookupByLabel("uart0")
			So(ok, ShouldBeTrue)
			So(byLabel, ShouldEqual, n)

			byPhandle, ok := tree.Pnode(7)
			So(ok, ShouldBeTrue)
			So(byPhandle, ShouldEqual, n)
		})

		Convey("Delete removes a node's subtree and prunes it from any selection", func() {
			parent := NewNode("bus")
			So(tree.Add("/bus", parent), ShouldBeNil)
			child := NewNode("dev0")
			So(tree.Add("/bus/dev0", child), ShouldBeNil)

			tree.SetSelected([]*Node{child})
			So(tree.Selected(), ShouldResemble, []*Node{child})

			tree.Delete(parent)

			_, ok := tree.LookupByPath("/bus/dev0")
			So(ok, ShouldBeFalse)
			So(tree.Selected(), ShouldBeEmpty)
		})

		Convey("Nodes(pattern) matches by absolute path regex, anchored full-match", func() {
			So(tree.Add("/soc", NewNode("soc")), ShouldBeNil)
			So(tree.Add("/soc/uart0", NewNode("uart0")), ShouldBeNil)
			So(tree.Add("/soc/uart1", NewNode("uart1")), ShouldBeNil)

			matches, err := tree.Nodes("/soc/uart.*")
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 2)

			// a bare pattern with no "/" gets an implicit ".*" prefix
			matches, err = tree.Nodes("uart0")
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 1)
			So(matches[0].Name(), ShouldEqual, "uart0")
		})

		Convey("Add of a node with a dangling phandle reference under Strict does not panic", func() {
			tree.Strict = true
			n := NewNode("ref")
			n.SetProperty("target", NewPhandleValue(99))
			So(func() { tree.Add("/ref", n) }, ShouldNotPanic)
		})
	})
}

func TestTreeDeepCopyDoesNotAliasPhandle(t *testing.T) {
	Convey("DeepCopy never carries the source phandle forward implicitly", t, func() {
		n := NewNode("orig")
		n.SetPhandle(5)
		cp := n.DeepCopy()
		So(cp.Phandle(), ShouldEqual, uint32(0))
	})
}
