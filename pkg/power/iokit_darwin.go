//go:build darwin && cgo

package power

/*
#cgo LDFLAGS: -framework CoreFoundation -framework IOKit

#include <string.h>
#include <CoreFoundation/CoreFoundation.h>
#include <IOKit/ps/IOPowerSources.h>
#include <IOKit/ps/IOPSKeys.h>

typedef struct {
	int hasCapacity;
	int capacity;
	int hasMaxCapacity;
	int maxCapacity;
	int hasCharging;
	int charging;
	char name[128];
	char kind[64];
	char state[64];
} islandPowerSource;

static int islandGetInt(CFDictionaryRef d, CFStringRef key, int *out) {
	CFTypeRef v = CFDictionaryGetValue(d, key);
	if (v == NULL || CFGetTypeID(v) != CFNumberGetTypeID()) {
		return 0;
	}
	return CFNumberGetValue((CFNumberRef)v, kCFNumberIntType, out) ? 1 : 0;
}

static void islandGetString(CFDictionaryRef d, CFStringRef key, char *out, CFIndex size) {
	CFTypeRef v = CFDictionaryGetValue(d, key);
	if (v == NULL || CFGetTypeID(v) != CFStringGetTypeID()) {
		return;
	}
	CFStringGetCString((CFStringRef)v, out, size, kCFStringEncodingUTF8);
}

// islandCopyPowerSources fills out with up to max power sources and returns
// how many were written, or -1 if the power source list is unavailable.
// total receives the number of sources the system reported.
static int islandCopyPowerSources(islandPowerSource *out, int max, int *total) {
	CFTypeRef info = IOPSCopyPowerSourcesInfo();
	if (info == NULL) {
		return -1;
	}
	CFArrayRef list = IOPSCopyPowerSourcesList(info);
	if (list == NULL) {
		CFRelease(info);
		return -1;
	}

	int n = 0;
	CFIndex count = CFArrayGetCount(list);
	*total = (int)count;
	for (CFIndex i = 0; i < count && n < max; i++) {
		CFDictionaryRef desc = IOPSGetPowerSourceDescription(info, CFArrayGetValueAtIndex(list, i));
		if (desc == NULL) {
			continue;
		}

		islandPowerSource *ps = &out[n];
		memset(ps, 0, sizeof(*ps));

		ps->hasCapacity = islandGetInt(desc, CFSTR(kIOPSCurrentCapacityKey), &ps->capacity);
		ps->hasMaxCapacity = islandGetInt(desc, CFSTR(kIOPSMaxCapacityKey), &ps->maxCapacity);

		CFTypeRef charging = CFDictionaryGetValue(desc, CFSTR(kIOPSIsChargingKey));
		if (charging != NULL && CFGetTypeID(charging) == CFBooleanGetTypeID()) {
			ps->hasCharging = 1;
			ps->charging = CFBooleanGetValue((CFBooleanRef)charging) ? 1 : 0;
		}

		islandGetString(desc, CFSTR(kIOPSNameKey), ps->name, sizeof(ps->name));
		islandGetString(desc, CFSTR(kIOPSTypeKey), ps->kind, sizeof(ps->kind));
		islandGetString(desc, CFSTR(kIOPSPowerSourceStateKey), ps->state, sizeof(ps->state));

		n++;
	}

	CFRelease(list);
	CFRelease(info);
	return n;
}
*/
import "C"

import (
	"github.com/sirupsen/logrus"
)

const maxIOKitSources = 8

var _ Source = &IOKit{}

// IOKit enumerates power sources with IOPSCopyPowerSourcesInfo. Unlike the
// battery backend it also reports UPSs and other accessories.
type IOKit struct{}

// NewIOKit returns an IOKit source.
func NewIOKit() *IOKit {
	return &IOKit{}
}

func (s *IOKit) Name() string { return "iokit" }

func (s *IOKit) Descriptions() ([]Description, error) {
	var buf [maxIOKitSources]C.islandPowerSource

	var total C.int
	n := int(C.islandCopyPowerSources(&buf[0], C.int(maxIOKitSources), &total))
	if n < 0 {
		return nil, ErrNoPowerSources
	}
	logTruncated(s.Name(), int(total), maxIOKitSources)

	ret := make([]Description, 0, n)
	for i := 0; i < n; i++ {
		ps := &buf[i]
		d := Description{}
		if ps.hasCapacity != 0 {
			d[KeyCurrentCapacity] = int(ps.capacity)
		}
		if ps.hasMaxCapacity != 0 {
			d[KeyMaxCapacity] = int(ps.maxCapacity)
		}
		if ps.hasCharging != 0 {
			d[KeyIsCharging] = ps.charging != 0
		}
		if name := C.GoString(&ps.name[0]); name != "" {
			d[KeyName] = name
		}
		if typ := C.GoString(&ps.kind[0]); typ != "" {
			d[KeyType] = typ
		}
		if state := C.GoString(&ps.state[0]); state != "" {
			d[KeyPowerSourceState] = state
		}
		ret = append(ret, d)
	}

	logrus.WithField("count", len(ret)).Trace("enumerated IOKit power sources")

	return ret, nil
}
