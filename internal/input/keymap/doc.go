// Package keymap provides the binding layers of the layer remapper and their
// settings file format.
//
// # Key Concepts
//
// Layer: A layer key plus the bindings that are active while it is held.
//
// Binding: Maps a key combo to an Action.
//
// Action: Either SendText, which types text in send notation, or
// RunCommand, which starts an external program.
//
// Settings: The ordered list of layers. Every layer sees every key event.
//
// # Binding Lookup
//
// A combo bound with explicit modifiers wins over the same key bound with
// key.ModUnspecified, which matches any modifier state.
//
// # Settings Files
//
// Settings are stored as JSON:
//
//	{
//	  "Layers": [
//	    {
//	      "LayerName": "Default",
//	      "Settings": {
//	        "LayerKeyTappedTimeout": "00:00:00.2000000",
//	        "ModifierReleasedRecentlyTimeout": "00:00:00.1000000",
//	        "LayerKey": "Oem1",
//	        "VimBindings": [
//	          {
//	            "Key": {"Key": "J", "Modifiers": "Unspecified"},
//	            "Value": {"$type": "SendKeysBindingAction", "Text": "{Down}"}
//	          }
//	        ]
//	      }
//	    }
//	  ]
//	}
//
// Timeouts are "[d.]hh:mm:ss[.fffffff]" time spans. LoadOrDefault falls back
// to DefaultSettings when the file is missing or invalid.
package keymap
