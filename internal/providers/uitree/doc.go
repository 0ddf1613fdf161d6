// Package uitree is a file-backed UI tree host.
//
// A dump is one frame: the event that produced it and the root of the tree.
// JSON (sonic) and YAML (goccy/go-yaml) are accepted, chosen by extension.
//
//	event: view_clicked
//	root:
//	  className: android.widget.FrameLayout
//	  packageName: com.example.mail
//	  bounds: {left: 0, top: 0, right: 1080, bottom: 2340}
//	  children:
//	    - text: Send
//	      className: android.widget.Button
//	      clickable: true
//
// Nodes marked unreadable fail on Info, and null children behave like
// children that vanished between counting and acquiring them.
//
// Watcher polls a dump file and delivers every new version as a frame.
package uitree
