// Package editor wires an editing surface, a selection coordinator and the
// notification bus into a single editor.
//
// The editor delivers input the way a browser does: the coordinator sees
// each key and mouse event first and may prevent its default; the surface
// then performs the native default, and the pending selection change is
// flushed back to the coordinator once the event is done.
//
//	ed, err := editor.Open("page.html", editor.WithConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	defer ed.Close()
//	ed.HandleKey(key.NewEvent(key.KeyRight, 0, key.ModNone))
//	fmt.Println(ed.Snapshot())
//
// Scripts replay a list of steps read from YAML; see Step.
package editor
