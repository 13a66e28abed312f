//go:build darwin && cgo

package osver

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Foundation
// #import <Foundation/Foundation.h>
//
// void islandSystemVersion(int *major, int *minor, int *patch) {
//     @autoreleasepool {
//         NSOperatingSystemVersion v = [[NSProcessInfo processInfo] operatingSystemVersion];
//         *major = (int)v.majorVersion;
//         *minor = (int)v.minorVersion;
//         *patch = (int)v.patchVersion;
//     }
// }
import "C"

func systemVersion() Version {
	var major, minor, patch C.int
	C.islandSystemVersion(&major, &minor, &patch)
	return Version{
		Major: int(major),
		Minor: int(minor),
		Patch: int(patch),
	}
}
