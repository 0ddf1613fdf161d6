// Package monitor wires the capture pipeline together.
//
// Frames from the host are fingerprinted and extracted into the latest
// snapshot slot. The adaptive scheduler, the fixed cadence loop and important
// events all end in SaveLatest, which takes the slot and persists whatever
// it held. The upload coordinator runs alongside and is kicked off again on
// every successful save and on capture-now.
package monitor
